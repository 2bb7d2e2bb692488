package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

var ErrUnknownCommand = errors.New("unknown command")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// validSessionID 会话 ID 会被用作文件名，只允许字母数字、下划线和短横线
func validSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// ParseCommand 把文本指令转换为状态机指令。
func ParseCommand(name string) (structs.Command, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return structs.Command{Kind: structs.CommandMoveLeft}, nil
	case "right":
		return structs.Command{Kind: structs.CommandMoveRight}, nil
	case "rotate", "rotate-cw", "w":
		return structs.Command{Kind: structs.CommandRotate, Dir: 1}, nil
	case "rotate-ccw", "q":
		return structs.Command{Kind: structs.CommandRotate, Dir: -1}, nil
	case "down", "drop":
		return structs.Command{Kind: structs.CommandSoftDrop}, nil
	case "pause":
		return structs.Command{Kind: structs.CommandTogglePause}, nil
	case "restart":
		return structs.Command{Kind: structs.CommandRestart}, nil
	}
	return structs.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// ParseCommands 解析以逗号分隔的一组指令，任意一条不合法则整体失败。
func ParseCommands(list string) ([]structs.Command, error) {
	var cmds []structs.Command
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		cmd, err := ParseCommand(name)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	return cmds, nil
}
