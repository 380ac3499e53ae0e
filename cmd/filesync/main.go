// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/filesync/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:]))
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string) int {
	cmd, err := newRootCmd(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err != nil {
		log.New(os.Stderr, zerolog.Nop()).Errorf("%v", err)
		return 1
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.New(os.Stderr, zerolog.Nop()).Errorf("%v", err)
		return 1
	}
	return 0
}
