package cachedir

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

var tempCounter atomic.Uint64

// UniqueSuffix returns a hex token built from the wall clock, the process id
// and a per-process counter. Sibling invocations racing on the same cache
// entry never pick the same temp name.
func UniqueSuffix() string {
	nanos := uint64(time.Now().UnixNano())
	count := tempCounter.Add(1) - 1
	return fmt.Sprintf("%016x%08x%04x", nanos, uint32(os.Getpid()), uint16(count))
}

// TempPath names a transient sibling of target used during an atomic write.
func TempPath(target string) string {
	return target + ".tmp-" + UniqueSuffix()
}

// WriteAtomic replaces target with data by writing a uniquely named sibling
// and renaming it over target. Readers see either the old or the new file.
func WriteAtomic(target string, data []byte) error {
	tmp := TempPath(target)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", target, err)
	}
	return nil
}
