package services

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "IMPORT_TRANSACTIONS", "import", "abc", "10.0.0.1", map[string]interface{}{"inserted": 3})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Action != "IMPORT_TRANSACTIONS" || entry.ResourceID != "abc" || entry.IPAddress != "10.0.0.1" {
			t.Errorf("unexpected entry %+v", entry)
		}
		if entry.Changes != `{"inserted":3}` {
			t.Errorf("unexpected changes %q", entry.Changes)
		}
	})

	t.Run("failure_is_logged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db)
		core, logs := observer.New(zapcore.ErrorLevel)
		defer logger.Replace(zap.New(core))()

		sqlDB, err := db.DB()
		if err != nil {
			t.Fatal(err)
		}
		sqlDB.Close()

		svc.Log("00000000-0000-7000-8000-000000000000", "DELETE", "transaction", "x", "", nil)

		if logs.FilterMessage("failed to create audit log entry").Len() != 1 {
			t.Errorf("expected audit failure to be logged, got %v", logs.All())
		}
	})
}
