package system

import "testing"

func TestCheckBulkCapacity(t *testing.T) {
	if err := CheckBulkCapacity(1); err != nil {
		t.Errorf("small batch should pass: %v", err)
	}
	if err := CheckBulkCapacity(MaxBatchRecords + 1); err == nil {
		t.Error("over-limit batch should be refused")
	}
}

func TestBatchMemoryNeed(t *testing.T) {
	if got := batchMemoryNeed(0); got != baseBytes {
		t.Errorf("empty batch should cost the base alone, got %d", got)
	}
	if got := batchMemoryNeed(100); got != baseBytes+100*perRecordBytes {
		t.Errorf("100 records: got %d", got)
	}
}
