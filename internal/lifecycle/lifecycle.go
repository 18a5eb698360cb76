// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lifecycle provides the start/stop primitive used by the
// demo binary's background driver loop, adapted from the teacher's
// common/lifecycle. Stop only signals the loop to exit; Wait blocks
// until the loop has actually exited.
package lifecycle

import "sync"

// LifeCycle manages the start/stop/wait protocol for a single
// background goroutine. Start and Stop are both idempotent.
//
//	lc := New()
//	lc.Start()
//	go func() {
//		defer lc.StopComplete()
//		for {
//			select {
//			case <-lc.StopCh():
//				return
//			case <-ticker.C:
//				doWork()
//			}
//		}
//	}()
//	lc.Stop() // signals the goroutine above; does not wait for it
//	lc.Wait() // blocks until the goroutine above returns
type LifeCycle interface {
	// Start returns false if already started.
	Start() bool
	// Stop returns false if already stopped.
	Stop() bool
	// StopComplete unblocks Wait. Called by the owned goroutine once
	// it has actually exited.
	StopComplete()
	// StopCh is closed when Stop is called.
	StopCh() <-chan struct{}
	// Wait blocks until StopComplete is called.
	Wait()
}

type lifeCycle struct {
	mu             sync.RWMutex
	stopCh         chan struct{}
	stopCompleteCh chan struct{}
}

// New returns a new LifeCycle, not yet started.
func New() LifeCycle {
	return &lifeCycle{
		stopCompleteCh: make(chan struct{}, 1),
	}
}

func (l *lifeCycle) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopCh != nil {
		return false
	}
	l.stopCh = make(chan struct{})
	return true
}

func (l *lifeCycle) Stop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopCh == nil {
		return false
	}
	close(l.stopCh)
	l.stopCh = nil
	return true
}

func (l *lifeCycle) StopCh() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopCh == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return l.stopCh
}

func (l *lifeCycle) StopComplete() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	select {
	case l.stopCompleteCh <- struct{}{}:
	default:
	}
}

func (l *lifeCycle) Wait() {
	<-l.stopCompleteCh
}
