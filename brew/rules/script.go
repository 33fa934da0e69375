package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"brewsim/brew"
	"brewsim/chip"
)

// Lua globals a script may define; each maps onto one rule hook.
const (
	luaTurnStarted      = "turn_started"
	luaRoundStarted     = "round_started"
	luaOrangeChipDrawn  = "orange_chip_drawn"
	luaRedChipDrawn     = "red_chip_drawn"
	luaBlueChipDrawn    = "blue_chip_drawn"
	luaYellowChipDrawn  = "yellow_chip_drawn"
	luaCauldronFinished = "cauldron_finished"
	luaBonusDieRolled   = "bonus_die_rolled"
	luaBlackChip        = "black_chip"
	luaGreenChip        = "green_chip"
	luaPurpleChip       = "purple_chip"
	luaPurchaseOptions  = "purchase_options"
)

// Script is a compiled Lua rule pack. It is safe to share; every match gets
// its own interpreter through NewRule.
type Script struct {
	name  string
	proto *lua.FunctionProto
}

// CompileScript parses and compiles Lua source.
func CompileScript(name, source string) (*Script, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", name, err)
	}
	return &Script{name: name, proto: proto}, nil
}

// LoadScriptFile compiles a .lua file; the rule is named after the file.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return CompileScript(name, string(data))
}

func (s *Script) Name() string { return s.name }

// NewRule starts an interpreter running the script.
func (s *Script) NewRule() (*ScriptRule, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua lib %s: %w", lib.name, err)
		}
	}
	// No file or chunk loading: a script sees only ctx and the pure libs.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	// Scripts must use ctx.roll so matches stay reproducible.
	if m, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		m.RawSetString("random", lua.LNil)
		m.RawSetString("randomseed", lua.LNil)
	}

	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("run script %s: %w", s.name, err)
	}
	return &ScriptRule{name: s.name, L: L}, nil
}

// ScriptRule forwards every hook to the matching Lua global, if defined.
// An interpreter is not safe for concurrent use; keep one per match.
type ScriptRule struct {
	name string
	L    *lua.LState
}

func (r *ScriptRule) Name() string { return r.name }

func (r *ScriptRule) Close() error {
	r.L.Close()
	return nil
}

// Defines reports whether the script implements the named hook.
func (r *ScriptRule) Defines(hook string) bool {
	return r.L.GetGlobal(hook).Type() == lua.LTFunction
}

func (r *ScriptRule) call(hook string, nret int, args ...lua.LValue) []lua.LValue {
	fn := r.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := r.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		panic(fmt.Sprintf("script %s: %s: %v", r.name, hook, err))
	}
	out := make([]lua.LValue, nret)
	for i := nret - 1; i >= 0; i-- {
		out[i] = r.L.Get(-1)
		r.L.Pop(1)
	}
	return out
}

func (r *ScriptRule) TurnStarted(g *brew.Game) {
	r.call(luaTurnStarted, 0, r.context(g, brew.InvalidPlayer))
}

func (r *ScriptRule) RoundStarted(g *brew.Game, id brew.PlayerID) {
	r.call(luaRoundStarted, 0, r.context(g, id))
}

func (r *ScriptRule) OrangeChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	r.call(luaOrangeChipDrawn, 0, r.context(g, id), lua.LString(c.String()))
}

func (r *ScriptRule) RedChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	r.call(luaRedChipDrawn, 0, r.context(g, id), lua.LString(c.String()))
}

func (r *ScriptRule) BlueChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	r.call(luaBlueChipDrawn, 0, r.context(g, id), lua.LString(c.String()))
}

func (r *ScriptRule) YellowChipDrawn(g *brew.Game, id brew.PlayerID, c chip.Chip) {
	r.call(luaYellowChipDrawn, 0, r.context(g, id), lua.LString(c.String()))
}

func (r *ScriptRule) CauldronFinished(g *brew.Game, id brew.PlayerID) {
	r.call(luaCauldronFinished, 0, r.context(g, id))
}

func (r *ScriptRule) BonusDieRolled(g *brew.Game, id brew.PlayerID, face brew.BonusDieFace) {
	r.call(luaBonusDieRolled, 0, r.context(g, id), lua.LString(face.String()))
}

func (r *ScriptRule) BlackChip(g *brew.Game, id brew.PlayerID) {
	r.call(luaBlackChip, 0, r.context(g, id))
}

func (r *ScriptRule) GreenChip(g *brew.Game, id brew.PlayerID) {
	r.call(luaGreenChip, 0, r.context(g, id))
}

func (r *ScriptRule) PurpleChip(g *brew.Game, id brew.PlayerID) {
	r.call(luaPurpleChip, 0, r.context(g, id))
}

// PurchaseOptions expects the script to return a list of {chip = "Name", price = n}.
func (r *ScriptRule) PurchaseOptions(g *brew.Game) []brew.Offer {
	ret := r.call(luaPurchaseOptions, 1, r.context(g, brew.InvalidPlayer))
	if len(ret) == 0 {
		return nil
	}
	tbl, ok := ret[0].(*lua.LTable)
	if !ok {
		return nil
	}
	var out []brew.Offer
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		c, err := chip.Parse(lua.LVAsString(entry.RawGetString("chip")))
		if err != nil {
			panic(fmt.Sprintf("script %s: purchase_options: %v", r.name, err))
		}
		out = append(out, brew.Offer{Chip: c, Price: int(lua.LVAsNumber(entry.RawGetString("price")))})
	})
	return out
}

// context builds the ctx table handed to every hook. Player-scoped helpers
// act on id; they raise a Lua error when no player is in scope.
func (r *ScriptRule) context(g *brew.Game, id brew.PlayerID) *lua.LTable {
	L := r.L
	ctx := L.NewTable()

	player := func(L *lua.LState) *brew.Player {
		target := id
		if L.GetTop() >= 1 {
			if n, ok := L.Get(1).(lua.LNumber); ok {
				target = brew.PlayerID(int(n))
			}
		}
		p := g.Player(target)
		if p == nil {
			L.RaiseError("no player %d in scope", target)
		}
		return p
	}
	colorArg := func(L *lua.LState, idx int) chip.Color {
		c, ok := chip.ParseColor(L.CheckString(idx))
		if !ok {
			L.ArgError(idx, "unknown color")
		}
		return c
	}
	intFn := func(fn func(*lua.LState) int) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(fn(L)))
			return 1
		})
	}
	mutFn := func(fn func(*lua.LState)) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			fn(L)
			return 0
		})
	}

	ctx.RawSetString("player", lua.LNumber(int(id)))
	ctx.RawSetString("turn", lua.LNumber(g.Turn()))
	ctx.RawSetString("num_players", lua.LNumber(g.NumPlayers()))

	ctx.RawSetString("position", intFn(func(L *lua.LState) int { return player(L).Cauldron().Position() }))
	ctx.RawSetString("rubies", intFn(func(L *lua.LState) int { return player(L).Rubies() }))
	ctx.RawSetString("victory_points", intFn(func(L *lua.LState) int { return player(L).VictoryPoints() }))
	ctx.RawSetString("drop", intFn(func(L *lua.LState) int { return player(L).Drop() }))
	ctx.RawSetString("roll", intFn(func(L *lua.LState) int { return g.Rand().Intn(L.CheckInt(1)) + 1 }))
	ctx.RawSetString("count", L.NewFunction(func(L *lua.LState) int {
		c := colorArg(L, 1)
		target := id
		if L.GetTop() >= 2 {
			target = brew.PlayerID(L.CheckInt(2))
		}
		p := g.Player(target)
		if p == nil {
			L.RaiseError("no player %d in scope", target)
		}
		L.Push(lua.LNumber(p.Cauldron().NumberOf(c)))
		return 1
	}))
	ctx.RawSetString("total", L.NewFunction(func(L *lua.LState) int {
		c := colorArg(L, 1)
		p := g.Player(id)
		if p == nil {
			L.RaiseError("no player in scope")
		}
		L.Push(lua.LNumber(p.Cauldron().TotalValueOf(c)))
		return 1
	}))
	ctx.RawSetString("exploded", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(player(L).Exploded()))
		return 1
	}))
	ctx.RawSetString("last_chip", L.NewFunction(func(L *lua.LState) int {
		c, ok := player(L).Cauldron().LastChip()
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(c.String()))
		return 1
	}))

	ctx.RawSetString("add_rubies", mutFn(func(L *lua.LState) { scoped(L, g, id).AddRubies(L.CheckInt(1)) }))
	ctx.RawSetString("add_victory_points", mutFn(func(L *lua.LState) { scoped(L, g, id).AddVictoryPoints(L.CheckInt(1)) }))
	ctx.RawSetString("move_drop", mutFn(func(L *lua.LState) { scoped(L, g, id).MoveDrop(L.CheckInt(1)) }))
	ctx.RawSetString("increase_position", mutFn(func(L *lua.LState) {
		scoped(L, g, id).Cauldron().IncreasePosition(L.CheckInt(1))
	}))
	ctx.RawSetString("set_limit", mutFn(func(L *lua.LState) { scoped(L, g, id).Cauldron().SetLimit(L.CheckInt(1)) }))
	// add_to_bag("Green2") or add_to_bag("Green", 2)
	ctx.RawSetString("add_to_bag", mutFn(func(L *lua.LState) {
		if L.GetTop() >= 2 {
			c, ok := chip.Of(colorArg(L, 1), L.CheckInt(2))
			if !ok {
				L.ArgError(2, "no chip with that value")
			}
			scoped(L, g, id).AddToBag(c)
			return
		}
		c, err := chip.Parse(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		scoped(L, g, id).AddToBag(c)
	}))
	return ctx
}

func scoped(L *lua.LState, g *brew.Game, id brew.PlayerID) *brew.Player {
	p := g.Player(id)
	if p == nil {
		L.RaiseError("no player in scope")
	}
	return p
}
