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
	"time"

	"github.com/golang/glog"

	"docdist/pkg/bucket"
	"docdist/pkg/document"
	"docdist/pkg/proto"
)

// Each dispatcher stamps its sub-commands with fresh message ids,
// registers them in the sent-message map and hands them to the sender;
// the tracker accounts for fan-out and send failures.

func (op *UpdateOperation) registerAndSend(cmd *proto.SubCommand) bool {
	now := time.Now()
	cmd.Deadline = now.Add(confSubOpTimeout)
	op.sent[cmd.MsgId] = sentSubOp{
		opCode: cmd.OpCode,
		node:   cmd.Node,
		bucket: cmd.Bucket,
		sentAt: now,
	}
	if err := op.opCtx.Sender.SendSubCommand(cmd); err != nil {
		delete(op.sent, cmd.MsgId)
		op.tracker.onFailToSend(err)
		if LOG_DEBUG {
			glog.Infof("Failed to send to SS[%d]: %s rid=%s: %s",
				cmd.Node, cmd.OpCode.String(), op.cmd.RequestId.String(), err)
		}
		return false
	}
	op.tracker.onSent()
	if LOG_DEBUG {
		glog.Infof("SS[%d]<-: %s %s rid=%s", cmd.Node, cmd.OpCode.String(), cmd.Bucket, op.cmd.RequestId.String())
	}
	return true
}

// sendDirectUpdates fans the client update out to every replica node;
// the storage nodes apply the mutations and evaluate any condition
// themselves.
func (op *UpdateOperation) sendDirectUpdates(snap *bucket.Snapshot) {
	op.tracker.reset()
	op.newTimestamp = op.chooseNewTimestamp()
	for _, node := range snap.Nodes() {
		cmd := proto.NewSubCommand(proto.OpCodeUpdate, node, op.cmd.Space, snap.Bucket, op.docId)
		cmd.Update = op.cmd.Update
		cmd.Condition = op.cmd.Condition
		cmd.CreateIfMissing = op.cmd.CreateIfMissing
		cmd.Timestamp = op.newTimestamp
		op.registerAndSend(cmd)
	}
	op.failFanOutIfNothingSent()
}

func (op *UpdateOperation) sendMetadataGets(snap *bucket.Snapshot) {
	op.tracker.reset()
	op.metaSamples = op.metaSamples[:0]
	op.replicasAtGetSendTime = snap.ReplicaRefs()
	for _, node := range snap.Nodes() {
		cmd := proto.NewSubCommand(proto.OpCodeMetadataGet, node, op.cmd.Space, snap.Bucket, op.docId)
		cmd.FieldsNone = true
		op.registerAndSend(cmd)
	}
	op.failFanOutIfNothingSent()
}

func (op *UpdateOperation) sendSingleFullGet(newest newestReplica) {
	op.tracker.reset()
	op.singleGetStart = time.Now()
	cmd := proto.NewSubCommand(proto.OpCodeGet, newest.node, op.cmd.Space, newest.bucketId, op.docId)
	op.registerAndSend(cmd)
	op.failFanOutIfNothingSent()
}

// sendFullGet is the direct full fetch used when the cheap metadata
// phase is disabled; it targets one replica, preferring a trusted one.
func (op *UpdateOperation) sendFullGet(snap *bucket.Snapshot) {
	op.tracker.reset()
	op.replicasAtGetSendTime = snap.ReplicaRefs()
	target := snap.Replicas[0]
	for _, r := range snap.Replicas {
		if r.Trusted {
			target = r
			break
		}
	}
	op.singleGetStart = time.Now()
	cmd := proto.NewSubCommand(proto.OpCodeGet, target.Node, op.cmd.Space, snap.Bucket, op.docId)
	op.registerAndSend(cmd)
	op.failFanOutIfNothingSent()
}

// sendPuts rewrites the updated document to every replica in the
// current replica set, re-read from the bucket database at put time.
func (op *UpdateOperation) sendPuts(doc *document.Document, ts proto.Timestamp) bool {
	payload, err := document.Encode(doc)
	if err != nil {
		glog.Errorf("Failed to encode document %q: %s", doc.Id, err)
		op.sendReplyStatus(proto.OpStatusInternal, err.Error())
		return false
	}
	nodes := op.currentPutTargets()
	if len(nodes) == 0 {
		// nowhere to place the document; the cluster state moved away
		// from this distributor
		op.sendLostOwnershipTransientErrorReply()
		return false
	}
	op.tracker.reset()
	for _, node := range nodes {
		cmd := proto.NewSubCommand(proto.OpCodePut, node, op.cmd.Space, op.bucketId, op.docId)
		cmd.Payload = payload
		cmd.Timestamp = ts
		op.registerAndSend(cmd)
	}
	op.failFanOutIfNothingSent()
	return true
}

func (op *UpdateOperation) currentPutTargets() []uint16 {
	if snap, ok := op.opCtx.DB.Snapshot(op.cmd.Space, op.bucketId); ok && len(snap.Replicas) > 0 {
		return snap.Nodes()
	}
	return op.opCtx.DB.IdealNodes(op.cmd.Space, op.bucketId)
}

// failFanOutIfNothingSent replies immediately when every send of a
// fan-out failed; there will be no reply callbacks to drive the state
// machine otherwise.
func (op *UpdateOperation) failFanOutIfNothingSent() {
	if op.tracker.numSent == 0 && !op.replySent {
		st := op.tracker.failToSendStatus
		if st == proto.OpStatusNoError {
			st = proto.OpStatusNoStorageNode
		}
		op.sendReplyStatus(st, "unable to reach any replica node")
	}
}
