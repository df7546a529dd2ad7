package walk

import (
	"os"
	"syscall"

	"github.com/xgrep/xgrep/internal/model"
)

// fileInputSource builds the InputSource for a real file, reading
// dev/inode off the platform Stat_t for dedup and --include-fs/--exclude-fs.
func fileInputSource(path string, info os.FileInfo) *model.InputSource {
	src := &model.InputSource{
		Kind:  model.SourceFile,
		Path:  path,
		Size:  info.Size(),
		Mtime: info.ModTime(),
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		src.Dev = uint64(st.Dev)
		src.Ino = st.Ino
	}
	return src
}
