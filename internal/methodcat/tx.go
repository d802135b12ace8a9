// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package methodcat

import (
	"bytes"
	"io"
)

// TxSelect/TxSelectOk/TxCommit/TxCommitOk/TxRollback/TxRollbackOk all
// carry no arguments (90,10/11/20/21/30/31).
type (
	TxSelect     struct{}
	TxSelectOk   struct{}
	TxCommit     struct{}
	TxCommitOk   struct{}
	TxRollback   struct{}
	TxRollbackOk struct{}
)

func (TxSelect) Encode(io.Writer) error     { return nil }
func (TxSelectOk) Encode(io.Writer) error   { return nil }
func (TxCommit) Encode(io.Writer) error     { return nil }
func (TxCommitOk) Encode(io.Writer) error   { return nil }
func (TxRollback) Encode(io.Writer) error   { return nil }
func (TxRollbackOk) Encode(io.Writer) error { return nil }

func DecodeTxSelect(*bytes.Reader) (TxSelect, error)         { return TxSelect{}, nil }
func DecodeTxSelectOk(*bytes.Reader) (TxSelectOk, error)     { return TxSelectOk{}, nil }
func DecodeTxCommit(*bytes.Reader) (TxCommit, error)         { return TxCommit{}, nil }
func DecodeTxCommitOk(*bytes.Reader) (TxCommitOk, error)     { return TxCommitOk{}, nil }
func DecodeTxRollback(*bytes.Reader) (TxRollback, error)     { return TxRollback{}, nil }
func DecodeTxRollbackOk(*bytes.Reader) (TxRollbackOk, error) { return TxRollbackOk{}, nil }
