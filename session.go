package gateway

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the concrete Session handed out by providers. The gate
// holds it for the duration of a single request cycle and never persists it.
type SessionObject struct {
	SubjectID string         `json:"subject_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	ExpiresAt time.Time      `json:"expires_at,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetSubjectID() string {
	return s.SubjectID
}

func (s *SessionObject) GetRole() string {
	return s.Role
}

func (s *SessionObject) GetExpiresAt() time.Time {
	return s.ExpiresAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// GetSubjectUUID parses the subject identifier as a UUID.
func (s *SessionObject) GetSubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(s.SubjectID)
}

func (s SessionObject) String() string {
	expires := "<nil>"
	if !s.ExpiresAt.IsZero() {
		expires = s.ExpiresAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"subject=%s role=%s exp=%s data=%v",
		s.SubjectID,
		s.Role,
		expires,
		s.Data,
	)
}
