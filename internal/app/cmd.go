// Package app は起動モードごとの依存関係のワイヤリングとライフサイクル管理を提供する。
package app

import "fmt"

// Command はyogastudioバイナリのサブコマンド。
type Command string

const (
	CommandServe       Command = "serve"
	CommandMigrate     Command = "migrate"
	CommandHealthcheck Command = "healthcheck" // distrolessイメージのHEALTHCHECK用
)

var commands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 引数がない場合はserveとみなす。2番目以降の引数は無視する。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	for _, c := range commands {
		if args[0] == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (available: %v)", args[0], commands)
}
