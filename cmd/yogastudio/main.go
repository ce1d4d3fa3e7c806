// Command yogastudio はヨガスタジオ予約APIを起動する。
//
// サブコマンド:
//
//	serve        APIサーバーを起動する（デフォルト）
//	migrate      データベースマイグレーションを適用する
//	healthcheck  /health を叩いて終了コードで結果を返す
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/yogastudio/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "yogastudio: %v\n", err)
		os.Exit(1)
	}
}
