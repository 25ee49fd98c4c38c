// leaderboard 打印存档中每个关卡的最高分
//
// 用法：
//
//	go run ./cmd/leaderboard                       # 默认 gdata 存档
//	go run ./cmd/leaderboard --store sqlite --sqlite matreshka.db
//	go run ./cmd/leaderboard --level 2 --limit 5
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/decker502/matreshka/pkg/app"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/quasilyte/gdata/v2"
)

var (
	store      = flag.String("store", "", "存档后端：gdata 或 sqlite")
	sqlitePath = flag.String("sqlite", "", "sqlite 数据库文件")
	levelFlag  = flag.String("level", "", "只显示一个关卡（level1..level4 或 1..4）")
	limit      = flag.Int("limit", 10, "每关显示的条目数")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := &config.AppConfig{}
	if err := config.ParseEnv(cfg); err != nil {
		fatal(err)
	}
	if *store != "" {
		cfg.Store = *store
	}
	if *sqlitePath != "" {
		cfg.SQLitePath = *sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	levels := config.AllLevels
	if *levelFlag != "" {
		level, err := config.ParseLevelID(*levelFlag)
		if err != nil {
			fatal(err)
		}
		levels = []config.LevelID{level}
	}

	var gm *gdata.Manager
	if cfg.Store == config.StoreGdata {
		m, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
		if err != nil {
			fatal(fmt.Errorf("open gdata: %w", err))
		}
		gm = m
	}

	s, err := app.OpenStore(cfg, gm, "")
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	if err := printLeaderboard(os.Stdout, s, levels, *limit); err != nil {
		fatal(err)
	}
}

// printLeaderboard 按关卡输出排行榜
func printLeaderboard(w io.Writer, lb game.Leaderboard, levels []config.LevelID, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, level := range levels {
		entries, err := lb.TopScores(level, limit)
		if err != nil {
			return fmt.Errorf("top scores of %s: %w", level, err)
		}
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (%s)\n", level.Title(), level)
		if len(entries) == 0 {
			fmt.Fprintln(tw, "  no scores yet")
			continue
		}
		for rank, e := range entries {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\t%d\n", rank+1, e.Username, e.AvatarColor, e.Score)
		}
	}
	return tw.Flush()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "leaderboard: %v\n", err)
	os.Exit(1)
}
