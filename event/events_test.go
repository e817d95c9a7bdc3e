package event_test

import (
	"errors"
	"testing"
	"time"

	"approvalflow/event"
	"approvalflow/session"

	. "github.com/onsi/gomega"

	"github.com/jinzhu/gorm"
)

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return error when failed to persist event", func(t *testing.T) {
		testErr := errors.New("test error")
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			return testErr
		}
		var tx = &gorm.DB{Value: 10000}
		ret, err := event.CreateEvent(event.SourceTypeApprovalRequest, 1234, "quotation Q-1",
			event.EventCategorySubmitted,
			event.EventDetail{EntityType: "QUOTATION", EntityID: 200},
			&session.Identity{ID: 333, Name: "user333"}, tx)
		Expect(ret).To(BeNil())
		Expect(err).To(Equal(testErr))
	})

	t.Run("should be able to create events", func(t *testing.T) {
		var ev event.EventRecord
		var db *gorm.DB
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			ev = *record
			db = tx
			return nil
		}

		var tx = &gorm.DB{Value: 10000}
		ret, err := event.CreateEvent(event.SourceTypeApprovalRequest, 1234, "quotation Q-1",
			event.EventCategoryCompletedRejected,
			event.EventDetail{EntityType: "QUOTATION", EntityID: 200, Reason: "price too high"},
			&session.Identity{ID: 333, Name: "user333"}, tx)
		Expect(err).To(BeNil())

		Expect(ret.Event).To(Equal(event.Event{
			SourceType: event.SourceTypeApprovalRequest,
			SourceId:   1234,
			SourceDesc: "quotation Q-1",

			EventCategory: event.EventCategoryCompletedRejected,
			Detail:        event.EventDetail{EntityType: "QUOTATION", EntityID: 200, Reason: "price too high"},

			CreatorId:   333,
			CreatorName: "user333",
		}))
		Expect(ret.Synced).To(BeFalse())
		Expect(time.Since(ret.Timestamp.Time()) < time.Second).To(BeTrue())

		Expect(ev).To(Equal(*ret))
		Expect(db).To(Equal(tx))
	})
}
