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

package clustermap

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"docdist/pkg/bucket"
	"docdist/pkg/util"
)

// The cluster manager publishes the responsible distributor index for
// each bucket under <KeyPrefix>/ownership/<space>/<bucket-hex>. The
// watcher mirrors those keys into the bucket database's ownership view;
// operations themselves only ever read the database.

type Config struct {
	Enabled     bool
	Endpoints   []string
	KeyPrefix   string
	DialTimeout util.Duration
}

var DefaultConfig = Config{
	Endpoints:   []string{"127.0.0.1:2379"},
	KeyPrefix:   "docdist",
	DialTimeout: util.Duration{Duration: 2 * time.Second},
}

type Watcher struct {
	cli    *clientv3.Client
	prefix string
	selfIx uint16
	db     *bucket.MemDatabase
	cancel context.CancelFunc
}

func NewWatcher(cfg *Config, selfIx uint16, db *bucket.MemDatabase) (*Watcher, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout.Duration,
	})
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cli:    cli,
		prefix: cfg.KeyPrefix + "/ownership/",
		selfIx: selfIx,
		db:     db,
	}, nil
}

func (w *Watcher) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	resp, err := w.cli.Get(ctx, w.prefix, clientv3.WithPrefix())
	if err != nil {
		cancel()
		return err
	}
	for _, kv := range resp.Kvs {
		w.apply(string(kv.Key), string(kv.Value))
	}

	rch := w.cli.Watch(ctx, w.prefix, clientv3.WithPrefix(), clientv3.WithProgressNotify())
	go func() {
		glog.Infof("clustermap: watcher waits for ownership events")
		for wresp := range rch {
			for _, ev := range wresp.Events {
				if ev.Type == clientv3.EventTypeDelete {
					// key removal means the bucket left the cluster map;
					// treat it as no longer owned here
					w.applyDelete(string(ev.Kv.Key))
				} else {
					w.apply(string(ev.Kv.Key), string(ev.Kv.Value))
				}
			}
		}
		glog.Infof("clustermap: watcher exits")
	}()
	return nil
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.cli.Close()
}

func (w *Watcher) apply(key, value string) {
	space, id, ok := parseOwnershipKey(w.prefix, key)
	if !ok {
		return
	}
	owner, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		glog.Warningf("clustermap: bad owner value %q for %s", value, key)
		return
	}
	w.db.SetOwned(space, id, uint16(owner) == w.selfIx)
}

func (w *Watcher) applyDelete(key string) {
	space, id, ok := parseOwnershipKey(w.prefix, key)
	if !ok {
		return
	}
	w.db.SetOwned(space, id, false)
}

func parseOwnershipKey(prefix, key string) (space bucket.Space, id bucket.Id, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		glog.Warningf("clustermap: unrecognized key %q", key)
		return
	}
	space, ok = bucket.ParseSpace(parts[0])
	if !ok {
		glog.Warningf("clustermap: unknown bucket space in key %q", key)
		return
	}
	raw, err := strconv.ParseUint(strings.TrimPrefix(parts[1], "0x"), 16, 64)
	if err != nil {
		glog.Warningf("clustermap: bad bucket id in key %q", key)
		ok = false
		return
	}
	id = bucket.Id(raw)
	return
}
