package shell

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("ttt_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// pushResult returns a command's output to lua, or its error as a string.
func pushResult(L *lua.LState, name string, r *Response, err error) int {
	if err != nil {
		log.Err(err).Msg("error-executing-" + name)
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	if r == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

func Exec(L *lua.LState) int {
	line := L.ToString(1)
	sc := getShell(L)
	// Scripts may not quit the shell.
	sig := make(chan os.Signal, 1)
	r, err := sc.standardModeSwitch(line, sig)
	if err == errQuit {
		err = errors.New("exit is not allowed in scripts")
	}
	return pushResult(L, "exec", r, err)
}

func Play(L *lua.LState) int {
	sc := getShell(L)
	r, err := sc.play(&shellcmd{cmd: "play", args: []string{L.ToString(1)}})
	return pushResult(L, "play", r, err)
}

func Show(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LString(sc.ctrl.Board().ToDisplayText(sc.glyphsPlain())))
	return 1
}

func State(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LString(sc.ctrl.State().String()))
	return 1
}

func Result(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LString(sc.ctrl.Result().String()))
	return 1
}

func Score(L *lua.LState) int {
	sc := getShell(L)
	s := sc.ctrl.SessionScore()
	L.Push(lua.LNumber(s.HumanWins))
	L.Push(lua.LNumber(s.AIWins))
	return 2
}

// History returns the moves of the current round as a table of cells.
func History(L *lua.LState) int {
	sc := getShell(L)
	t := L.NewTable()
	for _, m := range sc.ctrl.History() {
		t.Append(lua.LString(strings.ToLower(m.ShortDescription())))
	}
	L.Push(t)
	return 1
}

func Ack(L *lua.LState) int {
	sc := getShell(L)
	r, err := sc.ack(&shellcmd{cmd: "ack"})
	return pushResult(L, "ack", r, err)
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("ttt_shell", lsc)
	L.SetGlobal("ttt_exec", L.NewFunction(Exec))
	L.SetGlobal("ttt_play", L.NewFunction(Play))
	L.SetGlobal("ttt_show", L.NewFunction(Show))
	L.SetGlobal("ttt_state", L.NewFunction(State))
	L.SetGlobal("ttt_result", L.NewFunction(Result))
	L.SetGlobal("ttt_score", L.NewFunction(Score))
	L.SetGlobal("ttt_ack", L.NewFunction(Ack))
	L.SetGlobal("ttt_history", L.NewFunction(History))
	luajson.Preload(L)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
