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

package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// Documents travel between distributor and storage nodes as
// snappy-compressed JSON. Integral JSON numbers decode back to int64 so
// mutation arithmetic round-trips.
type wireDocument struct {
	Id     Id                     `json:"id"`
	Type   string                 `json:"type"`
	Fields map[string]interface{} `json:"fields"`
}

func Encode(d *Document) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot encode nil document")
	}
	raw, err := json.Marshal(wireDocument{Id: d.Id, Type: d.Type, Fields: d.Fields})
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func Decode(payload []byte) (*Document, error) {
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, err
	}
	var w wireDocument
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err = dec.Decode(&w); err != nil {
		return nil, err
	}
	doc := New(w.Id, w.Type)
	for k, v := range w.Fields {
		doc.Fields[k] = normalize(v)
	}
	return doc, nil
}

func normalize(v interface{}) interface{} {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}
