// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

type DocumentStatus string

const (
	DocumentDraft         DocumentStatus = "draft"
	DocumentPendingReview DocumentStatus = "pending_review"
	DocumentInReview      DocumentStatus = "in_review"
	DocumentApproved      DocumentStatus = "approved"
	DocumentRejected      DocumentStatus = "rejected"
	DocumentSigned        DocumentStatus = "signed"
	DocumentArchived      DocumentStatus = "archived"
	DocumentExpired       DocumentStatus = "expired"
)

var DocumentStatuses = []DocumentStatus{
	DocumentDraft, DocumentPendingReview, DocumentInReview, DocumentApproved,
	DocumentRejected, DocumentSigned, DocumentArchived, DocumentExpired,
}

func (s DocumentStatus) Valid() bool {
	for _, v := range DocumentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// NewDocumentStateMachine builds the document review lifecycle. Every state
// except archived (and expired itself) may expire.
func NewDocumentStateMachine() *StateMachine[DocumentStatus] {
	sm := New[DocumentStatus]()
	sm.Allow(DocumentDraft, DocumentPendingReview).
		Allow(DocumentPendingReview, DocumentInReview).
		Allow(DocumentInReview, DocumentApproved, DocumentRejected).
		Allow(DocumentApproved, DocumentSigned).
		Allow(DocumentSigned, DocumentArchived).
		Allow(DocumentRejected, DocumentDraft).
		Allow(DocumentExpired, DocumentArchived).
		Terminal(DocumentArchived)

	for _, s := range DocumentStatuses {
		if s != DocumentArchived && s != DocumentExpired {
			sm.Allow(s, DocumentExpired)
		}
	}
	return sm
}
