package advisor

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/gigamon-dev/subspace-go/core"
)

// LuaFreqManager implements core.FreqManager by calling into a
// decide(ship, freq, playerID, bounty) Lua function (SPEC_FULL.md §4.16).
// gopher-lua states aren't goroutine-safe, so each call borrows a state
// from a pool rather than sharing one across the dispatcher's goroutines.
type LuaFreqManager struct {
	script string
	pool   sync.Pool
	log    *zap.Logger
}

// NewLuaFreqManager compiles script once and verifies it defines
// decide(); every new pooled state loads the same source. A pooled state
// is returned to the pool after each call and reused, so globals a
// decide() call changes stay visible to later calls on that state.
func NewLuaFreqManager(script string, log *zap.Logger) (*LuaFreqManager, error) {
	probe := lua.NewState()
	defer probe.Close()
	if err := probe.DoString(script); err != nil {
		return nil, fmt.Errorf("load freq-manager script: %w", err)
	}
	if probe.GetGlobal("decide") == lua.LNil {
		return nil, fmt.Errorf("freq-manager script does not define decide()")
	}

	m := &LuaFreqManager{script: script, log: log}
	m.pool.New = func() any {
		vm := lua.NewState()
		if err := vm.DoString(m.script); err != nil {
			m.log.Error("lua freq-manager reload failed", zap.Error(err))
		}
		return vm
	}
	return m, nil
}

// ReviewShipFreqChange implements core.FreqManager. On any Lua-side
// failure it returns ok=false with no reason, signaling the engine's
// default rejection per §4.4.
func (m *LuaFreqManager) ReviewShipFreqChange(playerID int, requestedShip core.ShipType, requestedFreq int, bounty int) (core.ShipType, int, bool, string) {
	vm := m.pool.Get().(*lua.LState)
	defer m.pool.Put(vm)

	fn := vm.GetGlobal("decide")
	if fn == lua.LNil {
		m.log.Error("lua freq-manager missing decide()", zap.Int("player", playerID))
		return requestedShip, requestedFreq, false, ""
	}

	if err := vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(requestedShip), lua.LNumber(requestedFreq), lua.LNumber(playerID), lua.LNumber(bounty)); err != nil {
		m.log.Error("lua freq-manager decide() error", zap.Error(err), zap.Int("player", playerID))
		return requestedShip, requestedFreq, false, ""
	}

	result := vm.Get(-1)
	vm.Pop(1)

	tbl, ok := result.(*lua.LTable)
	if !ok {
		m.log.Error("lua freq-manager decide() returned non-table", zap.Int("player", playerID))
		return requestedShip, requestedFreq, false, ""
	}

	if tbl.RawGetString("allow") != lua.LTrue {
		reason := lua.LVAsString(tbl.RawGetString("reason"))
		return requestedShip, requestedFreq, false, reason
	}

	ship := requestedShip
	if v, ok := tbl.RawGetString("ship").(lua.LNumber); ok {
		ship = core.ShipType(v)
	}
	freq := requestedFreq
	if v, ok := tbl.RawGetString("freq").(lua.LNumber); ok {
		freq = int(v)
	}
	return ship, freq, true, ""
}
