/*
- @Author: aztec
- @Date: 2024-01-16 16:02:14
- @Description: 本地文件读取。同名的.zlib压缩文件优先
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package local

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// 相对路径以此为根。为空时使用工作目录
var LocalDataPath = ""

func Init(localDataPath string) {
	LocalDataPath = localDataPath
}

func resolve(path string) string {
	if len(LocalDataPath) == 0 || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(LocalDataPath, path)
}

// 解压读取器，关闭时同时关闭文件
type zlibFile struct {
	io.ReadCloser
	f *os.File
}

func (z *zlibFile) Close() error {
	err := z.ReadCloser.Close()
	if ferr := z.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// 先尝试path.zlib，不存在时打开原始文件
func OpenZipOrRawFile(path string) (io.ReadCloser, error) {
	path = resolve(path)
	if f, err := os.Open(path + ".zlib"); err == nil {
		zr, err := zlib.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &zlibFile{ReadCloser: zr, f: f}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return os.Open(path)
}

func LoadZipOrRawFile(path string) (*bytes.Buffer, error) {
	r, err := OpenZipOrRawFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	bf := &bytes.Buffer{}
	if _, err := bf.ReadFrom(r); err != nil {
		return nil, err
	}
	return bf, nil
}

// 写成zlib压缩文件，供下次快速读取
func SaveZipFile(path string, b []byte) error {
	path = resolve(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path + ".zlib")
	if err != nil {
		return err
	}
	zw := zlib.NewWriter(f)
	if _, err := zw.Write(b); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
