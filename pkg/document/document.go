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
	"fmt"
	"strconv"
	"strings"
)

// Id is a document identifier of the form
// "<namespace>:<doctype>:<user>:<name>". The user component, when
// present, is numeric. The bucket id is a hash of the whole id string.
type Id string

type IdParts struct {
	Namespace string
	DocType   string
	User      uint64
	HasUser   bool
	Name      string
}

func (id Id) Parse() (p IdParts, err error) {
	parts := strings.SplitN(string(id), ":", 4)
	if len(parts) != 4 {
		err = fmt.Errorf("malformed document id %q", string(id))
		return
	}
	p.Namespace = parts[0]
	p.DocType = parts[1]
	if parts[2] != "" {
		p.User, err = strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			err = fmt.Errorf("malformed user component in document id %q", string(id))
			return
		}
		p.HasUser = true
	}
	p.Name = parts[3]
	return
}

func (id Id) IsValid() bool {
	_, err := id.Parse()
	return err == nil
}

// Document is a structured document value: an id plus a flat field map.
// Field values are int64, float64, string or bool.
type Document struct {
	Id     Id
	Type   string
	Fields map[string]interface{}
}

func New(id Id, docType string) *Document {
	return &Document{
		Id:     id,
		Type:   docType,
		Fields: make(map[string]interface{}),
	}
}

// NewBlank builds the empty document used when create-if-missing applies
// to an absent document.
func NewBlank(id Id, docType string) *Document {
	return New(id, docType)
}

func (d *Document) Clone() *Document {
	cp := New(d.Id, d.Type)
	for k, v := range d.Fields {
		cp.Fields[k] = v
	}
	return cp
}

// Field resolves a field path against the document. Paths starting with
// "id." address the components of the document id.
func (d *Document) Field(path string) (interface{}, bool) {
	if strings.HasPrefix(path, "id.") {
		p, err := d.Id.Parse()
		if err != nil {
			return nil, false
		}
		switch path[len("id."):] {
		case "namespace":
			return p.Namespace, true
		case "type":
			return p.DocType, true
		case "user":
			if !p.HasUser {
				return nil, false
			}
			return int64(p.User), true
		case "name":
			return p.Name, true
		}
		return nil, false
	}
	v, ok := d.Fields[path]
	return v, ok
}

func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Id != other.Id || d.Type != other.Type || len(d.Fields) != len(other.Fields) {
		return false
	}
	for k, v := range d.Fields {
		if ov, ok := other.Fields[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
