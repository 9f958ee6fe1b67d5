/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/internal/weave"
)

// A Stats records process-wide statistics of weaving and of the runtime
// dispatch protocol.
type Stats struct {
	Weave    WeaveStats
	Dispatch DispatchStats
}

// A WeaveStats records statistics about weaving runs.
type WeaveStats struct {
	Marked    int
	Rewritten int
	Skipped   int
}

// A DispatchStats records statistics about exceptions dispatched by woven
// code.
type DispatchStats struct {
	Dispatched int
	Suppressed int
}

// GetStats returns the statistics gathered so far.
func GetStats() Stats {
	return Stats{
		Weave: WeaveStats{
			Marked:    int(atomic.LoadUint64(&weave.MarkCount)),
			Rewritten: int(atomic.LoadUint64(&weave.RewriteCount)),
			Skipped:   int(atomic.LoadUint64(&weave.SkipCount)),
		},
		Dispatch: DispatchStats{
			Dispatched: int(atomic.LoadUint64(&aop.DispatchCount)),
			Suppressed: int(atomic.LoadUint64(&aop.SuppressCount)),
		},
	}
}
