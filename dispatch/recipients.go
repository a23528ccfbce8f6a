// Package dispatch implements the position/weapon fan-out engine: recipient
// selection (C1), outbound shape construction (C2) and the position
// dispatcher that drives both (C3). Grounded on the teacher's
// handler_utils.go/spatial_grid.go range-query idiom, generalized from a
// fixed grid radius to the protocol's weapon-range/radar-sampling rules.
package dispatch

import (
	"github.com/gigamon-dev/subspace-go/core"
)

// ExtraClass is the per-recipient extra-field classification computed by
// the recipient filter (§4.2).
type ExtraClass int

const (
	ExtraNone ExtraClass = iota
	ExtraEnergyOnly
	ExtraFull
)

// Recipient is one outbound target chosen by the filter, carrying enough
// context for the shaper to pick a shape.
type Recipient struct {
	Player *core.Player
	Extra  ExtraClass
}

// WeaponRanges maps a weapon type to its configured send-range in pixels
// (arena's `wpn_range[]`, §4.2 step 2).
type WeaponRanges map[core.WeaponType]int

// SelectRecipients implements C1 (§4.2): for each candidate in the arena,
// decide inclusion and extra-field class. candidates excludes players not
// in Playing/standard-client state; callers are expected to have already
// filtered to that population via the registry (kept out of this function
// so it stays pure and easy to test).
func SelectRecipients(sender *core.Player, senderLast core.Position, hasWeapon bool, weapon core.WeaponType, candidates []*core.Player, ranges WeaponRanges, positionRadarPixels int, rng core.RNG) []Recipient {
	out := make([]Recipient, 0, len(candidates))
	for _, r := range candidates {
		if r == sender && !sender.SeeOwnPosition {
			continue
		}

		dist := core.IntHypot(int64(sender.Position.X)-int64(r.Position.X), int64(sender.Position.Y)-int64(r.Position.Y))
		rangeLimit := int64(r.XRes) + int64(r.YRes)
		if hasWeapon {
			wr := int64(ranges[weapon])
			if wr > rangeLimit {
				rangeLimit = wr
			}
		}

		include := dist <= rangeLimit
		if !include && !hasWeapon && positionRadarPixels > 0 && dist < int64(positionRadarPixels) {
			threshold := dist*core.RandMax/int64(positionRadarPixels) + 1
			if rng.Intn() > threshold {
				include = true
			}
		}
		if !include && r.SpeccingID == sender.ID {
			include = true
		}
		if !include && r.AttachedTo == sender.ID {
			include = true
		}
		if !include && r.SeeAllPositions {
			include = true
		}

		if !include {
			continue
		}

		out = append(out, Recipient{Player: r, Extra: classifyExtra(sender, r, senderLast)})
	}
	return out
}

// classifyExtra implements §4.2's "Extra-field classification per
// recipient" decision tree.
func classifyExtra(sender, r *core.Player, senderLast core.Position) ExtraClass {
	if r.Ship == core.ShipSpec && r.SeeEPD && r.SpeccingID == sender.ID {
		if senderLast.Extra != nil {
			return ExtraFull
		}
		return ExtraEnergyOnly
	}
	if r.Ship == core.ShipSpec {
		switch {
		case r.SeeNrgSpec == core.SeeEnergyAll:
			return ExtraEnergyOnly
		case r.SeeNrgSpec == core.SeeEnergyTeam && r.Freq == sender.Freq:
			return ExtraEnergyOnly
		case r.SeeNrgSpec == core.SeeEnergySpec && r.SpeccingID == sender.ID:
			return ExtraEnergyOnly
		}
		return ExtraNone
	}
	switch {
	case r.SeeNrg == core.SeeEnergyAll:
		return ExtraEnergyOnly
	case r.SeeNrg == core.SeeEnergyTeam && r.Freq == sender.Freq:
		return ExtraEnergyOnly
	}
	return ExtraNone
}

// SendToAllOverride evaluates §4.2's "Send-to-all override" predicate and
// reports whether the resulting send must be reliable.
func SendToAllOverride(isMine bool, weapon core.WeaponType, antiwarpSet bool, antiwarpSendThreshold int64, rng core.RNG, safezoneEnterTransition bool, flashSet bool) (override bool, reliable bool) {
	if safezoneEnterTransition || flashSet {
		return true, true
	}
	if isMine {
		return true, false
	}
	if weapon == core.WeaponNone && antiwarpSet && rng.Intn() < antiwarpSendThreshold {
		return true, false
	}
	return false, false
}

// MaskAntiwarp implements §4.2's "Antiwarp masking": clears the antiwarp
// status bit before recipient selection when the position is in a safe
// zone and the arena forbids antiwarp there.
func MaskAntiwarp(status uint8, inSafeZone, noSafeAntiwarp bool) uint8 {
	if inSafeZone && noSafeAntiwarp {
		return status &^ core.StatusAntiwarp
	}
	return status
}
