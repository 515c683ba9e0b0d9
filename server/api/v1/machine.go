// Copyright 2025 Zintix Labs
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

package v1

import (
	"net/http"

	"github.com/zintix-labs/reelab"
)

type MachineHandler struct {
	lab *reelab.Lab
}

func NewMachineHandler(lab *reelab.Lab) *MachineHandler {
	return &MachineHandler{lab: lab}
}

// Machines GET /v1/machines
func (mh *MachineHandler) Machines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mh.lab.Summaries())
}
