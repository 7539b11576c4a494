//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package proto

import (
	"time"

	"docdist/pkg/bucket"
	"docdist/pkg/document"
)

// TasCondition is a test-and-set condition: a selection expression that
// must hold on the stored document, optionally pinned to an exact
// persisted timestamp.
type TasCondition struct {
	Selection         string
	RequiredTimestamp Timestamp
}

// UpdateCommand is the client-issued update for one document.
type UpdateCommand struct {
	RequestId       RequestId
	Space           bucket.Space
	Update          *document.Update
	Condition       *TasCondition
	CreateIfMissing bool
	// Timestamp, when set, is the explicit update-timestamp the client
	// wants stamped onto the new version.
	Timestamp Timestamp
}

func (c *UpdateCommand) DocId() document.Id {
	if c.Update == nil {
		return ""
	}
	return c.Update.DocId
}

func (c *UpdateCommand) HasCondition() bool {
	return c.Condition != nil && (c.Condition.Selection != "" || c.Condition.RequiredTimestamp.IsSet())
}

func (c *UpdateCommand) CreateReply() *UpdateReply {
	return &UpdateReply{RequestId: c.RequestId}
}

// UpdateReply is the single outward-facing reply of an update operation.
type UpdateReply struct {
	RequestId    RequestId
	Status       OpStatus
	OldTimestamp Timestamp
	Message      string
	Trace        Trace
}

// Trace is an append-only rope of trace fragments gathered from sub-op
// replies.
type Trace []string

func (t *Trace) Append(fragment string) {
	if fragment != "" {
		*t = append(*t, fragment)
	}
}

func (t *Trace) AppendAll(other Trace) {
	*t = append(*t, other...)
}

// SubCommand is one outbound message to a storage node. The operation
// stamps each with a fresh MsgId and registers it in its sent-message
// map before handing it to the sender.
type SubCommand struct {
	MsgId  RequestId
	OpCode OpCode
	Node   uint16
	Space  bucket.Space
	Bucket bucket.Id
	DocId  document.Id

	// OpCodeUpdate
	Update          *document.Update
	Condition       *TasCondition
	CreateIfMissing bool

	// OpCodePut
	Payload []byte

	// OpCodeUpdate / OpCodePut: the timestamp of the new version.
	Timestamp Timestamp

	// OpCodeMetadataGet asks for metadata only; full gets leave it false.
	FieldsNone bool

	// Deadline bounds the sub-operation on the storage node side; the
	// operation itself arms no timer.
	Deadline time.Time
}

func NewSubCommand(op OpCode, node uint16, space bucket.Space, bkt bucket.Id, docId document.Id) *SubCommand {
	return &SubCommand{
		MsgId:  NewRequestId(),
		OpCode: op,
		Node:   node,
		Space:  space,
		Bucket: bkt,
		DocId:  docId,
	}
}

func (c *SubCommand) CreateReply(st OpStatus) *SubReply {
	return &SubReply{
		MsgId:  c.MsgId,
		OpCode: c.OpCode,
		Node:   c.Node,
		Bucket: c.Bucket,
		Status: st,
	}
}

// SubReply is one storage-node reply, delivered to the operation on its
// stripe.
type SubReply struct {
	MsgId  RequestId
	OpCode OpCode
	Node   uint16
	Bucket bucket.Id
	Status OpStatus

	// Timestamp is the persisted timestamp of the stored document; the
	// old timestamp for updates and puts.
	Timestamp Timestamp

	// Checksum of the replica content, returned by metadata gets.
	Checksum uint32

	// Payload is the encoded document, returned by full gets.
	Payload []byte

	Message string
	Trace   Trace
}
