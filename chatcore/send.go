package chatcore

import (
	"context"
	"strings"
	"time"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// Core bundles the collaborators the chat moderation core needs.
type Core struct {
	Registry  *core.Registry
	Transport core.Transport
	Obscene   *ObsceneFilter // nil ⇒ no filtering installed
	Commands  core.CommandManager
	Caps      core.CapabilityManager
	// CmdRewrite lets an advisor rewrite or veto a command line before the
	// command manager runs it (SPEC_FULL.md §9's command-rewriter
	// collaborator, supplementing §4.5). nil means no rewriter installed.
	CmdRewrite func(playerID int, line string) (string, bool)
	Logger     interface {
		Malicious(playerID int, msg string, fields ...any)
	}
	SendGarbageText bool // config: send the scrambled text rather than suppress
	MessageReliable bool
	CommandLimit    int
}

const (
	commandCharQuestion = '?'
	commandCharStar     = '*'
	commandSeparator    = '|'
	modChatPrefix       = '\\'
)

// Send implements §4.5's outbound send primitive `send(set, type, sound,
// from, text)`.
func (c *Core) Send(ctx context.Context, set []*core.Player, t wire.ChatType, sound uint8, fromID int16, text string) {
	isModChat := t == wire.ChatModChat
	if isModChat {
		t = wire.ChatSysopWarning
	}

	flags := core.SendFlags{Reliable: c.MessageReliable}
	if isModChat || t == wire.ChatPubMacro {
		flags.Priority = -1
	}

	if c.Obscene == nil {
		pkt := wire.EncodeChat(uint8(t), sound, fromID, text)
		ids := idsOf(set)
		c.Transport.SendToSet(ctx, ids, pkt, flags)
		return
	}

	var filterOff, filterOn []*core.Player
	for _, p := range set {
		if p.ObscenityFilter {
			filterOn = append(filterOn, p)
		} else {
			filterOff = append(filterOff, p)
		}
	}

	unfiltered := wire.EncodeChat(uint8(t), sound, fromID, text)
	if len(filterOff) > 0 {
		c.Transport.SendToSet(ctx, idsOf(filterOff), unfiltered, flags)
	}
	if len(filterOn) == 0 {
		return
	}

	scrambled, changed := c.Obscene.Filter(text)
	if !changed {
		c.Transport.SendToSet(ctx, idsOf(filterOn), unfiltered, flags)
		return
	}
	if c.SendGarbageText {
		pkt := wire.EncodeChat(uint8(t), sound, fromID, scrambled)
		c.Transport.SendToSet(ctx, idsOf(filterOn), pkt, flags)
	}
	// else: suppressed entirely for the filter-on subset (§4.5).
}

func idsOf(players []*core.Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

// HandleChat implements §4.5's inbound dispatch by type.
func (c *Core) HandleChat(ctx context.Context, sender *core.Player, raw []byte, arenaMask uint32, floodTuning FloodTuning, now time.Time) {
	in := wire.DecodeChat(raw)
	t := wire.ChatType(in.ChatType)

	sender.ChatMu.Lock()
	ExpireMask(sender, now)
	allowed := Allowed(sender, arenaMask, t)
	sender.ChatMu.Unlock()
	if !allowed {
		return
	}

	switch t {
	case wire.ChatArena, wire.ChatSysopWarning:
		c.Logger.Malicious(sender.ID, "client sent server-only chat type", "type", t)
		return

	case wire.ChatPub, wire.ChatPubMacro:
		c.dispatchPub(ctx, sender, in, t)

	case wire.ChatFreq:
		c.dispatchFreq(ctx, sender, in)

	case wire.ChatEnemyFreq:
		c.dispatchEnemyFreq(ctx, sender, in)

	case wire.ChatPrivate:
		c.dispatchPrivate(ctx, sender, in)

	case wire.ChatRemotePrivate:
		c.dispatchRemotePrivate(ctx, sender, in)

	case wire.ChatChat:
		// Channel chat: advisor hook / callback only, no built-in routing
		// (§4.5 "pass to advisor hook, fire callback") — left to the
		// caller's callback wiring since this package owns no channel
		// membership model.

	default:
		c.Logger.Malicious(sender.ID, "undefined chat type", "type", t)
		return
	}

	canSpam := c.Caps != nil && c.Caps.HasCapability(sender.ID, core.CapCanSpam)
	sender.ChatMu.Lock()
	ApplyFloodEscalation(sender, canSpam, floodTuning, now)
	sender.ChatMu.Unlock()
}

func (c *Core) dispatchPub(ctx context.Context, sender *core.Player, in wire.Chat, t wire.ChatType) {
	if len(in.Message) > 0 && rune(in.Message[0]) == modChatPrefix && c.Caps != nil && c.Caps.HasCapability(sender.ID, core.CapModChat) {
		c.routeModChat(ctx, sender, in.Message[1:])
		return
	}
	if isCommand(in.Message) {
		c.runCommands(ctx, sender, in.Message, core.CommandTarget{Kind: core.TargetArena, Arena: sender.Arena})
		return
	}
	recipients := c.Registry.PlayersInArena(sender.Arena)
	c.Send(ctx, recipients, t, in.Sound, int16(sender.ID), in.Message)
}

func (c *Core) routeModChat(ctx context.Context, sender *core.Player, text string) {
	// Mod-chat membership/routing is an out-of-scope capability-gated
	// broadcast set; callers supply it via Send with a pre-filtered set
	// when wiring this in production. Kept as a seam here.
	_ = text
}

func (c *Core) dispatchFreq(ctx context.Context, sender *core.Player, in wire.Chat) {
	if isCommand(in.Message) {
		c.runCommands(ctx, sender, in.Message, core.CommandTarget{Kind: core.TargetFreq, Freq: sender.Freq, Arena: sender.Arena})
		return
	}
	var teammates []*core.Player
	for _, p := range c.Registry.PlayersInArena(sender.Arena) {
		if p.Freq == sender.Freq && p.ID != sender.ID {
			teammates = append(teammates, p)
		}
	}
	c.Send(ctx, teammates, wire.ChatFreq, in.Sound, int16(sender.ID), in.Message)
}

func (c *Core) dispatchEnemyFreq(ctx context.Context, sender *core.Player, in wire.Chat) {
	target := c.Registry.Player(int(in.TargetPID))
	if target == nil || target.Arena != sender.Arena {
		return
	}
	if isCommand(in.Message) {
		c.runCommands(ctx, sender, in.Message, core.CommandTarget{Kind: core.TargetFreq, Freq: target.Freq, Arena: sender.Arena})
		return
	}
	var recipients []*core.Player
	for _, p := range c.Registry.PlayersInArena(sender.Arena) {
		if p.Freq == target.Freq {
			recipients = append(recipients, p)
		}
	}
	c.Send(ctx, recipients, wire.ChatEnemyFreq, in.Sound, int16(sender.ID), in.Message)
}

func (c *Core) dispatchPrivate(ctx context.Context, sender *core.Player, in wire.Chat) {
	target := c.Registry.Player(int(in.TargetPID))
	if target == nil || target.Arena != sender.Arena {
		return
	}
	if isCommand(in.Message) {
		c.runCommands(ctx, sender, in.Message, core.CommandTarget{Kind: core.TargetPlayer, PlayerID: target.ID})
		return
	}
	c.Send(ctx, []*core.Player{target}, wire.ChatPrivate, in.Sound, int16(sender.ID), in.Message)
}

func (c *Core) dispatchRemotePrivate(ctx context.Context, sender *core.Player, in wire.Chat) {
	if len(in.Message) == 0 || in.Message[0] != ':' {
		return
	}
	rest := in.Message[1:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return
	}
	destName, body := rest[:colon], rest[colon+1:]

	var dest *core.Player
	c.Registry.Range(func(p *core.Player) {
		if dest == nil && strings.EqualFold(p.Name, destName) {
			dest = p
		}
	})
	if dest == nil {
		return
	}

	allCmd := c.Caps != nil && c.Caps.HasCapability(sender.ID, core.CapAllCmd)
	if isCommand(body) || allCmd {
		c.runCommands(ctx, sender, body, core.CommandTarget{Kind: core.TargetPlayer, PlayerID: dest.ID})
		return
	}
	c.Send(ctx, []*core.Player{dest}, wire.ChatRemotePrivate, in.Sound, int16(sender.ID), "("+sender.Name+")> "+body)
}

func isCommand(s string) bool {
	return len(s) > 0 && (s[0] == commandCharQuestion || s[0] == commandCharStar)
}

// runCommands implements §4.5's "Commands": strip the first command char,
// split on '|' with CommandLimit max, dispatch each non-empty token.
func (c *Core) runCommands(ctx context.Context, sender *core.Player, line string, target core.CommandTarget) {
	if c.Commands == nil {
		return
	}
	body := line[1:]
	limit := c.CommandLimit
	if limit <= 0 {
		limit = 1
	}
	tokens := strings.SplitN(body, string(commandSeparator), limit)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if c.CmdRewrite != nil {
			var ok bool
			tok, ok = c.CmdRewrite(sender.ID, tok)
			if !ok {
				continue
			}
		}
		c.Commands.RunCommand(ctx, tok, sender.ID, target)
	}
}

// SendWrappedText implements §4.5's line-wrapping rule: wrap at 78 chars
// on spaces, prefix each line with two spaces.
func SendWrappedText(text string) []string {
	const width = 78
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	cur.WriteString("  ")
	lineLen := 2

	for _, w := range words {
		addLen := len(w)
		if lineLen > 2 {
			addLen++ // the joining space
		}
		if lineLen+addLen > width {
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString("  ")
			lineLen = 2
			addLen = len(w)
		}
		if lineLen > 2 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
		lineLen += addLen
	}
	lines = append(lines, cur.String())
	return lines
}
