package blob

import (
	"context"
	"testing"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Setenv("STANDCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver: got %s", store.Driver())
	}

	t.Setenv("STANDCORE_BLOB_DRIVER", "fs")
	t.Setenv("STANDCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver: got %s", store.Driver())
	}

	t.Setenv("STANDCORE_BLOB_DRIVER", "carrier-pigeon")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("unknown driver must fail")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("STANDCORE_BLOB_DRIVER", "s3")
	t.Setenv("STANDCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("missing bucket must fail")
	}
}
