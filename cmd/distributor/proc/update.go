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
	"fmt"
	"time"

	"github.com/golang/glog"

	"docdist/pkg/bucket"
	"docdist/pkg/document"
	"docdist/pkg/proto"
	"docdist/pkg/sequencer"
	"docdist/pkg/stats"
)

// General functional outline:
//
// if the bucket is consistent and all copies are in sync
//   send updates directly to the replica nodes
// else
//   start the safe (slow) path
//
// Safe path:
//
// send metadata gets to all replicas; if their timestamps and checksums
// agree and the replica set has not moved, restart with direct updates
// else fetch the newest copy, apply the mutations here and rewrite the
// document to every replica
//
// The operation runs on one distributor stripe; Start, Receive, Cancel
// and Close execute serially there and never block.

// ReplySink consumes the operation's single reply.
type ReplySink func(*proto.UpdateReply)

type UpdateOperation struct {
	opCtx *OperationContext
	cmd   *proto.UpdateCommand
	reply ReplySink

	docId    document.Id
	bucketId bucket.Id
	handle   sequencer.Handle

	sendState sendState
	mode      mode

	sent    map[proto.RequestId]sentSubOp
	tracker subOpTracker

	metaSamples           []metadataSample
	replicasAtGetSendTime []bucket.ReplicaRef

	// highest persisted timestamp seen in any metadata or get reply;
	// the put-phase timestamp must exceed it
	newestObservedTs proto.Timestamp
	oldTimestamp     proto.Timestamp
	newTimestamp     proto.Timestamp

	fastPathRepairSourceNode int

	singleGetStart time.Time
	startTime      time.Time

	trace proto.Trace

	replySent bool
	cancelled bool
}

func NewUpdateOperation(opCtx *OperationContext, cmd *proto.UpdateCommand, reply ReplySink) *UpdateOperation {
	return &UpdateOperation{
		opCtx:                    opCtx,
		cmd:                      cmd,
		reply:                    reply,
		sent:                     make(map[proto.RequestId]sentSubOp),
		sendState:                stNoneSent,
		fastPathRepairSourceNode: -1,
	}
}

// FastPathRepairSourceNode names the replica the repair path should
// read from after a diverged fast-path outcome.
func (op *UpdateOperation) FastPathRepairSourceNode() (uint16, bool) {
	if op.fastPathRepairSourceNode < 0 {
		return 0, false
	}
	return uint16(op.fastPathRepairSourceNode), true
}

func (op *UpdateOperation) transitionTo(next sendState) {
	if LOG_DEBUG {
		glog.Infof("state %s -> %s rid=%s", op.sendState.String(), next.String(), op.cmd.RequestId.String())
	}
	op.sendState = next
}

func (op *UpdateOperation) Start() {
	op.startTime = time.Now()

	if !op.validate() {
		return
	}
	op.docId = op.cmd.DocId()
	op.bucketId = bucket.IdForDocument(string(op.docId))

	op.handle = op.opCtx.Sequencer.Acquire(op.docId)
	if !op.handle.Valid() {
		op.sendReplyStatus(proto.OpStatusBusy, kSeqConflict)
		return
	}
	if blocked, reason := op.opCtx.FeedGate.Blocked(); blocked {
		msg := kFeedBlocked
		if reason != "" {
			msg = kFeedBlocked + ": " + reason
		}
		op.sendReplyStatus(proto.OpStatusFeedBlocked, msg)
		return
	}

	snap, _ := op.opCtx.DB.Snapshot(op.cmd.Space, op.bucketId)
	if !confForceSafePath && isFastPathEligible(&snap) {
		op.mode = modeFastPath
		stats.IncPath("fast")
		op.transitionTo(stUpdatesSent)
		op.sendDirectUpdates(&snap)
		return
	}
	op.startSafePathUpdate(&snap)
}

func (op *UpdateOperation) validate() bool {
	if op.cmd.Update == nil {
		op.sendReplyStatus(proto.OpStatusBadMsg, "update command carries no update")
		return false
	}
	docId := op.cmd.DocId()
	if len(docId) == 0 {
		op.sendReplyStatus(proto.OpStatusBadParam, "missing document id")
		return false
	}
	if len(docId) > confMaxDocIdLength {
		op.sendReplyStatus(proto.OpStatusBadParam,
			fmt.Sprintf("document id length %d exceeds limit %d", len(docId), confMaxDocIdLength))
		return false
	}
	if !docId.IsValid() {
		op.sendReplyStatus(proto.OpStatusBadParam, fmt.Sprintf("malformed document id %q", string(docId)))
		return false
	}
	if !op.cmd.Space.IsValid() {
		op.sendReplyStatus(proto.OpStatusBadParam, "unsupported bucket-space")
		return false
	}
	return true
}

func (op *UpdateOperation) startSafePathUpdate(snap *bucket.Snapshot) {
	op.mode = modeSlowPath
	stats.IncPath("slow")
	if len(snap.Replicas) == 0 {
		if op.cmd.CreateIfMissing {
			op.startBlankDocumentPut()
		} else {
			op.sendNotFoundReply()
		}
		return
	}
	if confUseMetadataGetPhase {
		op.transitionTo(stMetadataGetsSent)
		op.sendMetadataGets(snap)
	} else {
		op.transitionTo(stFullGetsSent)
		op.sendFullGet(snap)
	}
}

// Receive routes one storage-node reply. Replies can interleave in any
// order within a send-state; the tracker decides when a fan-out is
// complete. Late replies after the client reply only contribute trace.
func (op *UpdateOperation) Receive(r *proto.SubReply) {
	sub, ok := op.sent[r.MsgId]
	if !ok {
		if LOG_DEBUG {
			glog.Infof("No sub-op pending for reply from SS[%d] (%s); dropped", r.Node, r.OpCode.String())
		}
		return
	}
	delete(op.sent, r.MsgId)
	stats.RecordSubOp(sub.opCode, time.Since(sub.sentAt))
	op.trace.AppendAll(r.Trace)

	if op.replySent {
		return
	}
	if r.OpCode != sub.opCode {
		glog.Errorf("OpCode mismatch: sent %s, reply carries %s rid=%s",
			sub.opCode.String(), r.OpCode.String(), op.cmd.RequestId.String())
		return
	}

	switch op.sendState {
	case stUpdatesSent:
		op.onUpdateReply(r)
	case stMetadataGetsSent:
		op.onMetadataGetReply(r, sub)
	case stSingleGetSent, stFullGetsSent:
		op.onFullGetReply(r)
	case stPutsSent:
		op.onPutReply(r)
	default:
		glog.Errorf("Reply received in state %s rid=%s", op.sendState.String(), op.cmd.RequestId.String())
	}
}

func (op *UpdateOperation) onUpdateReply(r *proto.SubReply) {
	switch r.Status {
	case proto.OpStatusNoError:
		op.tracker.onSuccess(r)
		if op.fastPathRepairSourceNode < 0 && r.Timestamp.IsSet() {
			op.fastPathRepairSourceNode = int(r.Node)
		}
	case proto.OpStatusOwnershipChanged, proto.OpStatusBucketNotFound:
		op.tracker.onWrongOwner(r)
	default:
		op.tracker.onError(r)
	}
	if !op.tracker.isComplete() {
		return
	}
	if op.tracker.allSucceeded() {
		op.oldTimestamp = op.tracker.maxTimestamp
		op.sendOkReply(op.tracker.maxTimestamp)
		return
	}
	if op.tracker.sawOwnershipLoss() {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	if op.tracker.numSuccess > 0 {
		// applied on a subset of replicas; hand the divergence to the
		// replica-repair path
		glog.Warningf("Update diverged across replicas of %s for %q; repair source node %d",
			op.bucketId.String(), string(op.docId), op.fastPathRepairSourceNode)
	}
	op.sendReplyStatus(op.tracker.aggregatedStatus(), "update failed on one or more replicas")
}

func (op *UpdateOperation) onMetadataGetReply(r *proto.SubReply, sub sentSubOp) {
	sample := metadataSample{node: r.Node, bucket: sub.bucket, status: r.Status}
	switch r.Status {
	case proto.OpStatusNoError, proto.OpStatusNotFound:
		sample.ok = true
		sample.ts = r.Timestamp
		sample.checksum = r.Checksum
		op.tracker.onSuccess(r)
		if r.Timestamp > op.newestObservedTs {
			op.newestObservedTs = r.Timestamp
		}
	default:
		op.tracker.onError(r)
	}
	op.metaSamples = append(op.metaSamples, sample)
	if op.tracker.isComplete() {
		op.handleAllMetadataReceived()
	}
}

func (op *UpdateOperation) handleAllMetadataReceived() {
	anyFailed := op.tracker.numError > 0 || op.tracker.numFailToSend > 0
	if op.tracker.numSuccess == 0 {
		op.sendReplyStatus(op.tracker.aggregatedStatus(), "all metadata gets failed")
		return
	}
	if !op.newestObservedTs.IsSet() {
		// no replica has the document
		if op.cmd.CreateIfMissing {
			op.startBlankDocumentPut()
		} else {
			op.sendNotFoundReply()
		}
		return
	}
	if !anyFailed && op.mayRestartWithFastPath() {
		op.restartWithFastPathDueToConsistentMetadata()
		return
	}
	newest, ok := selectNewestReplica(op.metaSamples)
	if !ok {
		op.sendReplyStatus(proto.OpStatusInternal, "no usable metadata replies")
		return
	}
	if op.lostOwnership() {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	op.transitionTo(stSingleGetSent)
	op.sendSingleFullGet(newest)
}

// mayRestartWithFastPath holds iff every metadata reply succeeded with
// one shared nonzero timestamp and checksum, the replica set still
// matches what it was when the metadata phase began, and the safe path
// is not forced.
func (op *UpdateOperation) mayRestartWithFastPath() bool {
	if confForceSafePath {
		return false
	}
	var ts proto.Timestamp
	var chk uint32
	for i, s := range op.metaSamples {
		if !s.ok {
			return false
		}
		if i == 0 {
			ts, chk = s.ts, s.checksum
			continue
		}
		if s.ts != ts || s.checksum != chk {
			return false
		}
	}
	if !ts.IsSet() {
		return false
	}
	return op.replicaSetUnchangedSinceGetSend()
}

func (op *UpdateOperation) replicaSetUnchangedSinceGetSend() bool {
	snap, ok := op.opCtx.DB.Snapshot(op.cmd.Space, op.bucketId)
	if !ok {
		return false
	}
	return bucket.SameReplicaRefs(snap.ReplicaRefs(), op.replicasAtGetSendTime)
}

func (op *UpdateOperation) restartWithFastPathDueToConsistentMetadata() {
	snap, ok := op.opCtx.DB.Snapshot(op.cmd.Space, op.bucketId)
	if !ok || len(snap.Replicas) == 0 {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	if LOG_DEBUG {
		glog.Infof("Restarting update %s with fast path; metadata timestamps consistent at %d",
			op.cmd.RequestId.String(), uint64(op.newestObservedTs))
	}
	// Mode stays SLOW_PATH; the restart changes the send-state only
	stats.IncPath("fast_restart")
	op.transitionTo(stUpdatesSent)
	op.sendDirectUpdates(&snap)
}

func (op *UpdateOperation) onFullGetReply(r *proto.SubReply) {
	if LOG_VERBOSE {
		if !op.singleGetStart.IsZero() {
			glog.Infof("single get latency %s rid=%s", time.Since(op.singleGetStart).String(), op.cmd.RequestId.String())
		}
	}
	switch r.Status {
	case proto.OpStatusNoError, proto.OpStatusNotFound:
	case proto.OpStatusOwnershipChanged, proto.OpStatusBucketNotFound:
		op.sendLostOwnershipTransientErrorReply()
		return
	default:
		op.sendReplyStatus(r.Status, "full get failed")
		return
	}
	persisted := r.Timestamp
	if persisted > op.newestObservedTs {
		op.newestObservedTs = persisted
	}

	var doc *document.Document
	if len(r.Payload) > 0 {
		var err error
		if doc, err = document.Decode(r.Payload); err != nil {
			glog.Errorf("Failed to decode document from SS[%d]: %s", r.Node, err)
			op.sendReplyStatus(proto.OpStatusInternal, "undecodable document payload")
			return
		}
	}
	if doc == nil {
		if !op.cmd.CreateIfMissing {
			op.sendNotFoundReply()
			return
		}
		doc = document.NewBlank(op.docId, op.cmd.Update.DocType)
		persisted = 0
	}
	op.oldTimestamp = persisted

	if op.cmd.Timestamp.IsSet() && !satisfiesUpdateTimestampConstraint(op.cmd.Timestamp, persisted) {
		op.sendReplyStatus(proto.OpStatusTimestampConflict,
			fmt.Sprintf("update timestamp %d is not beyond persisted timestamp %d",
				uint64(op.cmd.Timestamp), uint64(persisted)))
		return
	}
	if !op.checkTasCondition(doc, persisted) {
		return
	}
	if err := op.cmd.Update.ApplyTo(doc); err != nil {
		op.sendReplyStatus(proto.OpStatusInternal, err.Error())
		return
	}
	newTs := op.cmd.Timestamp
	if !newTs.IsSet() {
		newTs = op.chooseNewTimestamp()
	}
	op.newTimestamp = newTs
	if op.lostOwnership() {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	op.transitionTo(stPutsSent)
	op.sendPuts(doc, newTs)
}

func (op *UpdateOperation) onPutReply(r *proto.SubReply) {
	switch r.Status {
	case proto.OpStatusNoError:
		op.tracker.onSuccess(r)
	case proto.OpStatusOwnershipChanged, proto.OpStatusBucketNotFound:
		op.tracker.onWrongOwner(r)
	default:
		op.tracker.onError(r)
	}
	if !op.tracker.isComplete() {
		return
	}
	if op.tracker.allSucceeded() {
		op.sendOkReply(op.oldTimestamp)
		return
	}
	if op.tracker.sawOwnershipLoss() {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	op.sendReplyStatus(op.tracker.aggregatedStatus(), "put failed on one or more replicas")
}

// startBlankDocumentPut skips the get phase entirely: no replica has
// the document and create-if-missing applies.
func (op *UpdateOperation) startBlankDocumentPut() {
	doc := document.NewBlank(op.docId, op.cmd.Update.DocType)
	op.oldTimestamp = 0
	if !op.checkTasCondition(doc, 0) {
		return
	}
	if err := op.cmd.Update.ApplyTo(doc); err != nil {
		op.sendReplyStatus(proto.OpStatusInternal, err.Error())
		return
	}
	newTs := op.cmd.Timestamp
	if !newTs.IsSet() {
		newTs = op.chooseNewTimestamp()
	}
	op.newTimestamp = newTs
	if op.lostOwnership() {
		op.sendLostOwnershipTransientErrorReply()
		return
	}
	op.transitionTo(stPutsSent)
	op.sendPuts(doc, newTs)
}

// checkTasCondition returns false after replying if the test-and-set
// condition rejects the candidate document. A required timestamp equal
// to the persisted timestamp satisfies the condition without touching
// the predicate.
func (op *UpdateOperation) checkTasCondition(doc *document.Document, persisted proto.Timestamp) bool {
	if !op.cmd.HasCondition() {
		return true
	}
	cond := op.cmd.Condition
	if cond.RequiredTimestamp.IsSet() {
		if cond.RequiredTimestamp == persisted {
			return true
		}
		if cond.Selection == "" {
			op.replyWithTasFailure(fmt.Sprintf("required timestamp %d does not match persisted timestamp %d",
				uint64(cond.RequiredTimestamp), uint64(persisted)))
			return false
		}
	}
	pred, err := op.opCtx.Parser.Parse(cond.Selection)
	if err != nil {
		op.sendReplyStatus(proto.OpStatusBadParam, err.Error())
		return false
	}
	if !pred.Evaluate(doc) {
		op.replyWithTasFailure(fmt.Sprintf("condition %q did not match document", cond.Selection))
		return false
	}
	return true
}

func (op *UpdateOperation) replyWithTasFailure(msg string) {
	stats.IncTasFailure()
	op.sendReplyStatus(proto.OpStatusTestAndSetFailed, msg)
}

func satisfiesUpdateTimestampConstraint(updateTs, persisted proto.Timestamp) bool {
	return persisted < updateTs
}

func (op *UpdateOperation) chooseNewTimestamp() proto.Timestamp {
	ts := op.opCtx.Clock.Next()
	if ts <= op.newestObservedTs {
		ts = op.newestObservedTs + 1
	}
	return ts
}

func (op *UpdateOperation) lostOwnership() bool {
	return !op.opCtx.DB.OwnedByThisDistributor(op.cmd.Space, op.bucketId)
}

// Cancel stops further dispatch and replies Cancelled; a no-op when the
// reply is already out. Late sub-op replies are absorbed afterwards.
func (op *UpdateOperation) Cancel() {
	op.cancelled = true
	op.sendReplyStatus(proto.OpStatusCancelled, kOpCancelled)
}

// Close is cancellation on distributor shutdown.
func (op *UpdateOperation) Close() {
	op.cancelled = true
	op.sendReplyStatus(proto.OpStatusAborted, kOpAborted)
}
