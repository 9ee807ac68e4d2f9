package importer

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/spy-lang/spy/internal/ast"
)

// cacheVersion is bumped whenever the AST shape changes in a way that
// would make an old .spyc unsafe to trust (spec §6 "version mismatch
// ⇒ discard and re-parse").
const cacheVersion uint32 = 1

// spycFile is the on-disk shape of a .spyc cache entry: `{version,
// module}` (spec §6). The SymTable half of spec.md's "pickled AST +
// symtable" is intentionally dropped here: symtable.SymTable carries
// unexported bookkeeping fields gob cannot round-trip, and rebuilding
// it from the cached Module via symtable.BuildModule is cheap and
// entirely deterministic, so there is nothing a cached SymTable would
// save.
type spycFile struct {
	Version uint32
	Module  *ast.Module
}

func init() {
	for _, n := range []any{
		&ast.FuncDef{}, &ast.ClassDef{}, &ast.VarDef{}, &ast.Assign{},
		&ast.UnpackAssign{}, &ast.AugAssign{}, &ast.If{}, &ast.While{},
		&ast.For{}, &ast.Break{}, &ast.Continue{}, &ast.Return{},
		&ast.Raise{}, &ast.Assert{}, &ast.StmtExpr{},
		&ast.Name{}, &ast.IntLit{}, &ast.FloatLit{}, &ast.StrLit{},
		&ast.BoolLit{}, &ast.NoneLit{}, &ast.TupleLit{}, &ast.BinOp{},
		&ast.UnaryOp{}, &ast.Compare{}, &ast.Call{}, &ast.Index{},
		&ast.Attribute{}, &ast.GenericApply{},
		&ast.NamedType{}, &ast.GenericType{},
	} {
		gob.Register(n)
	}
}

// cachePath returns the .spyc path for a source file, per spec §6:
// `<source-dir>/__pycache__/<stem>.spyc`.
func cachePath(sourcePath, cacheDirName string) string {
	dir := filepath.Dir(sourcePath)
	stem := filepath.Base(sourcePath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	return filepath.Join(dir, cacheDirName, stem+".spyc")
}

// loadCache accepts a cached module only if its version stamp matches
// and the cache file's mtime is newer than the source's (spec §4.5
// step 3).
func loadCache(sourcePath, cacheDirName string) (*ast.Module, error) {
	cp := cachePath(sourcePath, cacheDirName)

	cacheInfo, err := os.Stat(cp)
	if err != nil {
		return nil, err
	}
	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, err
	}
	if !cacheInfo.ModTime().After(srcInfo.ModTime()) {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(cp)
	if err != nil {
		return nil, err
	}
	var sf spycFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sf); err != nil {
		return nil, err
	}
	if sf.Version != cacheVersion {
		return nil, os.ErrNotExist
	}
	return sf.Module, nil
}

// saveCache writes mod's .spyc next to sourcePath, guarded by an
// atomic write-temp-then-rename (spec §5 "Filesystem cache: best-effort,
// guarded by atomic write").
func saveCache(sourcePath, cacheDirName string, mod *ast.Module) error {
	cp := cachePath(sourcePath, cacheDirName)
	if err := os.MkdirAll(filepath.Dir(cp), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(spycFile{Version: cacheVersion, Module: mod}); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(cp), ".spyc-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	now := time.Now()
	if err := os.Chtimes(tmpName, now, now); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, cp)
}
