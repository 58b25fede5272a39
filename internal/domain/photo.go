package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressPhoto stores metadata about a progress photo uploaded by a
// client. The actual file resides in S3; the backend only hands out
// presigned URLs and keeps this record.
type ProgressPhoto struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID     primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // denormalized, zero when the client has no coach
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`                       // internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	TakenAt     *time.Time         `bson:"takenAt,omitempty" json:"takenAt,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
