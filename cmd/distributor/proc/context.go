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

package proc

import (
	"docdist/pkg/bucket"
	"docdist/pkg/errors"
	"docdist/pkg/proto"
	"docdist/pkg/selection"
	"docdist/pkg/sequencer"
)

// MessageSender transports sub-commands to storage nodes. Replies come
// back through the owning stripe as Receive callbacks; SendSubCommand
// itself never blocks.
type MessageSender interface {
	SendSubCommand(cmd *proto.SubCommand) *errors.Error
}

// FeedAdmission is the surrounding admission predicate checked at
// operation start.
type FeedAdmission interface {
	Blocked() (bool, string)
}

// SelectionParser parses test-and-set selection expressions.
type SelectionParser interface {
	Parse(expr string) (selection.Predicate, error)
}

// OperationContext bundles the external collaborators an operation
// borrows during its callbacks. All of them outlive the operation.
type OperationContext struct {
	DB        bucket.Database
	Sender    MessageSender
	Sequencer *sequencer.Sequencer
	Clock     proto.TimestampSource
	FeedGate  FeedAdmission
	Parser    SelectionParser
}
