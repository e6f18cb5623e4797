/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const emptyDrawing = `{"backgroundImage":"","strokes":[]}`

const oneStroke = `{"backgroundImage":"","strokes":[{"points":[{"x":1,"y":1},{"x":5,"y":5}],"color":"red","position":{"x":0,"y":0}}]}`

func TestWriteDrawingAddsExtAndReads(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteDrawing(filepath.Join(dir, "sketch"), []byte(emptyDrawing), 0)
	if err != nil {
		t.Fatalf("WriteDrawing: %v", err)
	}
	if !strings.HasSuffix(p, ".draw") {
		t.Fatalf("expected .draw extension, got %s", p)
	}
	got, err := ReadDrawing(p)
	if err != nil {
		t.Fatalf("ReadDrawing: %v", err)
	}
	if string(got) != emptyDrawing {
		t.Fatalf("content mismatch: %s", got)
	}
	if WithExt("a.DRAW") != "a.DRAW" {
		t.Fatalf("WithExt should keep existing extension")
	}
}

func TestWriteDrawingBackupsAndPrune(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "pic.draw")
	for i := 0; i < 5; i++ {
		if _, err := WriteDrawing(p, []byte(emptyDrawing), 2); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	bs, err := Backups(p)
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(bs) != 2 {
		t.Fatalf("expected 2 backups after pruning, got %d", len(bs))
	}
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestReadLatestValidFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "pic.draw")
	if _, err := WriteDrawing(p, []byte(oneStroke), 3); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := WriteDrawing(p, []byte(`{"backgroundImage":`), 3); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	data, from, err := ReadLatestValid(p)
	if err != nil {
		t.Fatalf("ReadLatestValid: %v", err)
	}
	if from == p || string(data) != oneStroke {
		t.Fatalf("expected backup content, got %s from %s", data, from)
	}
}

func TestReadDrawingMissing(t *testing.T) {
	_, err := ReadDrawing(filepath.Join(t.TempDir(), "nope.draw"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
