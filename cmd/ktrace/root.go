// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rtos-tracing/ktrace/decode"
	"github.com/rtos-tracing/ktrace/internal/atomicfile"
	"github.com/rtos-tracing/ktrace/internal/logging"
	"github.com/rtos-tracing/ktrace/pb"
	"github.com/rtos-tracing/ktrace/periph"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

// app is the state shared by the commands of one invocation.
type app struct {
	v   *viper.Viper
	log logr.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logr.Discard()}
	root := &cobra.Command{
		Use:           "ktrace",
		Short:         "Record and inspect kernel traces",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "config file (YAML)")
	pf.String("log-backend", logging.DefaultBackend, "logging backend: "+strings.Join(logging.Backends(), ", "))
	pf.IntP("verbosity", "v", 0, "log verbosity")

	root.AddCommand(a.recordCmd(), a.dumpCmd(), a.otelCmd())
	return root
}

// init loads configuration for cmd and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("KTRACE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if cfg := a.v.GetString("config"); cfg != "" {
		a.v.SetConfigFile(cfg)
		if err := a.v.ReadInConfig(); err != nil {
			return xerrors.Errorf("reading config: %w", err)
		}
	}
	log, err := logging.New(a.v.GetString("log-backend"), cmd.ErrOrStderr(), a.v.GetInt("verbosity"))
	if err != nil {
		return err
	}
	a.log = log.WithName("ktrace")
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.V(1).Info("using config file", "path", f)
	}
	return nil
}

// readTrace decodes the trace file at path.
func readTrace(path string) ([]*pb.TracePacket, error) {
	r, err := atomicfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	ps, err := decode.Read(r)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// loadBoard reads a board description, or returns nil for an empty path.
func loadBoard(path string) (*periph.Board, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := periph.LoadBoard(f)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return b, nil
}
