package aptcache

import (
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// compressionExts are the index compressions APT writes that this tool
// reads. Anything else is skipped with a warning.
var compressionExts = map[string]bool{
	"": true, ".gz": true, ".xz": true, ".zst": true,
}

// openReader wraps an index stream in the decompressor its extension
// calls for. The returned func releases decompressor state and must be
// called after reading.
func openReader(r io.Reader, ext string) (io.Reader, func(), error) {
	switch ext {
	case "":
		return r, func() {}, nil
	case ".gz":
		zr, err := kgzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xr, func() {}, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), zr.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported compression %q", ext)
}
