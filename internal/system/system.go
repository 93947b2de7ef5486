package system

import (
	"fmt"
	"log"

	"github.com/shirou/gopsutil/v3/mem"
)

// MaxBatchRecords caps one bulk job. Generation is serial, so the limit
// guards archive size and request duration rather than concurrency.
const MaxBatchRecords = 1000

// Rough retained footprint per record: the encoded JPEG kept in the
// in-memory archive until the batch response is written. Generation is
// serial, so the single canvas in flight is covered by baseBytes.
const perRecordBytes = 1 << 20

const baseBytes = 64 << 20

// CheckBulkCapacity verifies record count and available memory before a
// bulk job starts. A failed memory probe is logged and waved through;
// refusing work over a broken probe would be worse than trying.
func CheckBulkCapacity(recordCount int) error {
	if recordCount > MaxBatchRecords {
		return fmt.Errorf("batch of %d records exceeds the %d record limit", recordCount, MaxBatchRecords)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("System: memory probe failed: %v", err)
		return nil
	}

	need := batchMemoryNeed(recordCount)
	if vm.Available < need {
		return fmt.Errorf("not enough memory for batch: need %d MB, have %d MB available",
			need>>20, vm.Available>>20)
	}
	return nil
}

// batchMemoryNeed is the budget CheckBulkCapacity holds a batch against:
// the fixed base plus one retained archive entry per record.
func batchMemoryNeed(recordCount int) uint64 {
	return uint64(baseBytes) + uint64(recordCount)*perRecordBytes
}
