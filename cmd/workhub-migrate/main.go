// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/migration"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/migrate"
	"github.com/go-arcade/workhub/pkg/version"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "workhub-migrate",
	Short: "workhub-migrate applies and reverts schema revisions",
	Long:  "workhub-migrate walks the revision graph of the workhub schema against the configured database",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			return
		}
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [target]",
	Short: "apply revisions up to target (default head)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := migrate.TargetHead
		if len(args) == 1 {
			target = args[0]
		}
		return withEngine(cmd.Context(), func(ctx context.Context, e *migrate.Engine) error {
			applied, err := e.Upgrade(ctx, target)
			if err != nil {
				return err
			}
			report(cmd, "upgraded", applied)
			return nil
		})
	},
}

var downgradeCmd = &cobra.Command{
	Use:   "downgrade <target>",
	Short: "revert revisions down to target: a revision id, base or -1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, e *migrate.Engine) error {
			reverted, err := e.Downgrade(ctx, args[0])
			if err != nil {
				return err
			}
			report(cmd, "reverted", reverted)
			return nil
		})
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "print the applied heads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, e *migrate.Engine) error {
			heads, err := e.Current(ctx)
			if err != nil {
				return err
			}
			if len(heads) == 0 {
				cmd.Println("<base>")
				return nil
			}
			cmd.Println(strings.Join(heads, "\n"))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list every revision in apply order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, e *migrate.Engine) error {
			entries, err := e.History(ctx)
			if err != nil {
				return err
			}
			for _, h := range entries {
				cmd.Println(h.String())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "conf.d/config.yaml", "conf file path")
	rootCmd.AddCommand(upgradeCmd, downgradeCmd, currentCmd, historyCmd, version.VersionCmd)
}

func withEngine(ctx context.Context, fn func(context.Context, *migrate.Engine) error) error {
	appConf, err := config.LoadConfigFile(configFile)
	if err != nil {
		return err
	}
	if _, err := log.NewLog(&appConf.Log); err != nil {
		return err
	}
	manager, err := database.NewManager(appConf.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			log.Warnw("close database failed", "error", err)
		}
	}()

	engine, err := migration.NewEngine(manager.Postgres())
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, engine)
}

func report(cmd *cobra.Command, verb string, revisions []string) {
	if len(revisions) == 0 {
		cmd.Println("nothing to do")
		return
	}
	for _, rev := range revisions {
		cmd.Printf("%s %s\n", verb, rev)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
