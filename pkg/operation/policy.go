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

package operation

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/relocate"
	"gitlab.com/tozd/go/errors"
)

const msgNotFoundForDeletion = "file not found for deletion"

// 🏷️ Kind classifies a filesystem error
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindAlreadyExists:
		return "already_exists"
	default:
		return "other"
	}
}

// Classify maps err onto a Kind
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, relocate.ErrCollision), errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindOther
	}
}

// 🪜 Step names the part of a pass an error came from
type Step string

const (
	StepRelocate     Step = "relocate"
	StepDeleteSource Step = "delete-source"
	StepClearInput   Step = "clear-input"
)

// 📜 Policy is what to do with an error
type Policy int

const (
	// PolicyAbort stops the pass and returns the error
	PolicyAbort Policy = iota
	// PolicyLog reports the error and continues
	PolicyLog
	// PolicyIgnore continues with a debug log only
	PolicyIgnore
)

func (p Policy) String() string {
	switch p {
	case PolicyLog:
		return "log"
	case PolicyIgnore:
		return "ignore"
	default:
		return "abort"
	}
}

// PolicyTable maps a step and error kind to a policy. Missing entries abort.
type PolicyTable map[Step]map[Kind]Policy

// DefaultPolicies swallows a source that vanished before deletion and aborts on everything else
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		StepDeleteSource: {KindNotFound: PolicyLog},
		StepClearInput:   {KindNotFound: PolicyIgnore},
	}
}

// Lookup returns the policy for step and kind
func (p PolicyTable) Lookup(step Step, kind Kind) Policy {
	if kinds, ok := p[step]; ok {
		if policy, ok := kinds[kind]; ok {
			return policy
		}
	}
	return PolicyAbort
}

// With returns a copy of the table with one entry set
func (p PolicyTable) With(step Step, kind Kind, policy Policy) PolicyTable {
	out := make(PolicyTable, len(p)+1)
	for s, kinds := range p {
		out[s] = make(map[Kind]Policy, len(kinds))
		for k, v := range kinds {
			out[s][k] = v
		}
	}
	if out[step] == nil {
		out[step] = map[Kind]Policy{}
	}
	out[step][kind] = policy
	return out
}

// WithContinueOnError keeps a pass going when a single file cannot be relocated.
// Collisions still abort.
func (p PolicyTable) WithContinueOnError() PolicyTable {
	return p.
		With(StepRelocate, KindPermissionDenied, PolicyLog).
		With(StepRelocate, KindOther, PolicyLog)
}

// 💥 StepError is returned when a policy aborts a pass
type StepError struct {
	Step Step
	Name string
	Kind Kind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Step, e.Name, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// handle applies the policy for err and returns a non-nil error only when the pass must stop
func (o *operator) handle(ctx context.Context, step Step, name string, err error) (Kind, error) {
	kind := Classify(err)
	policy := o.policies.Lookup(step, kind)

	switch policy {
	case PolicyIgnore:
		zerolog.Ctx(ctx).Debug().Err(err).
			Str("step", string(step)).
			Str("file", name).
			Str("kind", kind.String()).
			Msg("ignoring error")
		return kind, nil
	case PolicyLog:
		op := log.FileOperation{
			Name:   name,
			Event:  log.EventFailed,
			Action: string(step),
			Detail: kind.String(),
			Err:    err,
		}
		if kind == KindNotFound {
			op.Event = log.EventNotFound
			if step == StepDeleteSource {
				op.Detail = msgNotFoundForDeletion
			}
		}
		o.console(ctx).LogFileOperation(ctx, op)
		return kind, nil
	default:
		return kind, errors.WithStack(&StepError{Step: step, Name: name, Kind: kind, Err: err})
	}
}
