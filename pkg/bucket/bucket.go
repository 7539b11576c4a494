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

package bucket

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Space is the bucket-space a document lives in. Spaces partition the
// bucket id namespace; replica placement is computed per space.
type Space uint8

const (
	SpaceDefault Space = iota
	SpaceGlobal

	numSpaces
)

func (s Space) String() string {
	switch s {
	case SpaceDefault:
		return "default"
	case SpaceGlobal:
		return "global"
	default:
		return "invalid"
	}
}

func (s Space) IsValid() bool {
	return s < numSpaces
}

func ParseSpace(name string) (Space, bool) {
	switch name {
	case "default", "":
		return SpaceDefault, true
	case "global":
		return SpaceGlobal, true
	}
	return numSpaces, false
}

// Id is a routing partition containing many documents; the unit of
// replication. The low UsedBits of the document id hash select the bucket.
type Id uint64

const UsedBits = 16

func IdForDocument(docId string) Id {
	return Id(murmur3.Sum64([]byte(docId)) & ((1 << UsedBits) - 1))
}

func (id Id) String() string {
	return fmt.Sprintf("0x%04x", uint64(id))
}
