package archive

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoSize bounds the number of memoised package listings.
const MemoSize = 1024

var packageMemo = mustLRU(MemoSize)

func mustLRU(size int) *lru.Cache[string, []string] {
	c, err := lru.New[string, []string](size)
	if err != nil {
		panic(err)
	}
	return c
}

// memoKey changes whenever the file is replaced or rewritten.
func memoKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
}

// PurgeMemo drops all memoised package listings.
func PurgeMemo() {
	packageMemo.Purge()
}
