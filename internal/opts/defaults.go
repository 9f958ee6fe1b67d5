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

package opts

import (
	"os"
	"strconv"
)

var (
	DefaultFailurePolicy = parsePolicyOrDefault("LOOM_FAILURE_POLICY", Abort)
	DefaultVerify        = parseBoolOrDefault("LOOM_VERIFY", true)
)

func parsePolicyOrDefault(key string, def FailurePolicy) FailurePolicy {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := ParseFailurePolicy(env); err != nil {
		panic("loom: invalid value for " + key)
	} else {
		return val
	}
}

func parseBoolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("loom: invalid value for " + key)
	} else {
		return val
	}
}
