// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bench drives concurrent write load against a typedkv column family.
//
// A Runner splits the requested entries into batches and submits each batch
// to an ants worker pool. Keys are sequential uint64 values, so a family
// filled by the runner reads back in write order. The highest key written is
// recorded with the checkpoint package; the next run continues after it.
package bench
