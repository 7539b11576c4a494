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

package app

import (
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/spaolacci/murmur3"

	"docdist/cmd/distributor/config"
	"docdist/cmd/distributor/proc"
	"docdist/pkg/bucket"
	"docdist/pkg/clustermap"
	"docdist/pkg/errors"
	"docdist/pkg/proto"
	"docdist/pkg/sequencer"
	"docdist/pkg/stats"
)

const stripeQueueLen = 1024

type Distributor struct {
	transport proc.MessageSender
	db        *bucket.MemDatabase
	seq       *sequencer.Sequencer
	clock     proto.MonotoneClock
	gate      FeedGate
	parser    proc.SelectionParser

	stripes []*stripe
	wg      sync.WaitGroup

	// message-id -> *routedOp, for reply delivery
	pending sync.Map

	watcher *clustermap.Watcher
	httpSrv *http.Server
}

type routedOp struct {
	op *proc.UpdateOperation
	st *stripe
}

func New(transport proc.MessageSender, parser proc.SelectionParser) *Distributor {
	d := &Distributor{
		transport: transport,
		db:        bucket.NewMemDatabase(),
		seq:       sequencer.New(),
		parser:    parser,
	}
	for i := 0; i < config.Conf.NumStripes; i++ {
		d.stripes = append(d.stripes, newStripe(i, stripeQueueLen, &d.wg))
	}
	return d
}

func (d *Distributor) Start() error {
	proc.InitConfig()
	proc.SetLogLevel()
	stats.Init()

	for _, s := range d.stripes {
		d.wg.Add(1)
		go s.run()
	}

	if config.Conf.ClusterMap.Enabled {
		w, err := clustermap.NewWatcher(&config.Conf.ClusterMap, config.Conf.DistributorIndex, d.db)
		if err != nil {
			return err
		}
		if err = w.Start(); err != nil {
			w.Stop()
			return err
		}
		d.watcher = w
	}

	if config.Conf.HttpMonAddr != "" {
		d.httpSrv = &http.Server{Addr: config.Conf.HttpMonAddr, Handler: stats.NewRouter()}
		go func() {
			if err := d.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				glog.Errorf("stats endpoint: %s", err)
			}
		}()
	}
	glog.Infof("distributor %d started with %d stripes", config.Conf.DistributorIndex, len(d.stripes))
	return nil
}

func (d *Distributor) Shutdown() {
	if d.httpSrv != nil {
		d.httpSrv.Close()
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	for _, s := range d.stripes {
		s.stop()
	}
	d.wg.Wait()
}

func (d *Distributor) Database() *bucket.MemDatabase {
	return d.db
}

func (d *Distributor) FeedGate() *FeedGate {
	return &d.gate
}

func (d *Distributor) stripeFor(docId string) *stripe {
	ix := murmur3.Sum32([]byte(docId)) % uint32(len(d.stripes))
	return d.stripes[ix]
}

// SubmitUpdate schedules an update operation onto the stripe of its
// document id; the sink runs on that stripe when the single reply is
// ready.
func (d *Distributor) SubmitUpdate(cmd *proto.UpdateCommand, sink proc.ReplySink) bool {
	st := d.stripeFor(string(cmd.DocId()))
	return st.submit(func() {
		sender := &opSender{d: d, st: st, out: d.transport}
		opCtx := &proc.OperationContext{
			DB:        d.db,
			Sender:    sender,
			Sequencer: d.seq,
			Clock:     &d.clock,
			FeedGate:  &d.gate,
			Parser:    d.parser,
		}
		var op *proc.UpdateOperation
		op = proc.NewUpdateOperation(opCtx, cmd, func(r *proto.UpdateReply) {
			d.dropRouting(sender.issued)
			st.forget(op)
			sink(r)
		})
		sender.op = op
		st.track(op)
		op.Start()
	})
}

// DeliverReply routes one storage-node reply back onto the stripe of
// the operation that issued the sub-command. Replies without a pending
// entry are dropped; the operation has already answered the client.
func (d *Distributor) DeliverReply(r *proto.SubReply) {
	v, ok := d.pending.LoadAndDelete(r.MsgId)
	if !ok {
		if glog.V(4) {
			glog.Infof("dropping reply for unknown sub-op %s", r.MsgId.String())
		}
		return
	}
	ro := v.(*routedOp)
	ro.st.submit(func() {
		ro.op.Receive(r)
	})
}

func (d *Distributor) dropRouting(msgIds []proto.RequestId) {
	for _, id := range msgIds {
		d.pending.Delete(id)
	}
}

// opSender registers each outbound sub-command for reply routing before
// handing it to the deployment's transport.
type opSender struct {
	d      *Distributor
	st     *stripe
	op     *proc.UpdateOperation
	out    proc.MessageSender
	issued []proto.RequestId
}

func (s *opSender) SendSubCommand(cmd *proto.SubCommand) *errors.Error {
	s.d.pending.Store(cmd.MsgId, &routedOp{op: s.op, st: s.st})
	if err := s.out.SendSubCommand(cmd); err != nil {
		s.d.pending.Delete(cmd.MsgId)
		return err
	}
	s.issued = append(s.issued, cmd.MsgId)
	return nil
}
