// Command tinyfsdemo exercises TinyFS's core operations end to end, mirroring the
// original libTinyFS demo's scenario structure: core functionality, renaming,
// permissions, and timestamp behavior. It also exposes a snapshot subcommand for
// exporting/importing a backing file, and dump/dump-diff subcommands for
// inspecting raw block contents.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tinyfs-go/tinyfs"
	"github.com/tinyfs-go/tinyfs/blockdev"
	"github.com/tinyfs-go/tinyfs/file"
	"github.com/tinyfs-go/tinyfs/snapshot"
	"github.com/tinyfs-go/tinyfs/util"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "snapshot":
			if err := runSnapshot(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "dump":
			if err := runDump(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "dump-diff":
			if err := runDumpDiff(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	runDemo()
}

// runDump prints one raw 256-byte block of a backing file in hex and ASCII,
// for inspecting a volume's on-disk layout by hand.
func runDump(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tinyfsdemo dump <path> <blockNum>")
	}
	path := args[0]
	blockNum, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("block number must be an integer: %w", err)
	}

	registry := blockdev.NewRegistry()
	h, err := registry.OpenDisk(path, 0)
	if err != nil {
		return err
	}
	defer registry.CloseDisk(h)

	buf := make([]byte, blockdev.BlockSize)
	if err := registry.ReadBlock(h, blockNum, buf); err != nil {
		return err
	}
	fmt.Print(util.DumpByteSlice(buf, 16, true, true, false, nil))
	return nil
}

// runDumpDiff compares the same block number across two backing files and
// prints a highlighted hex diff, useful for spotting exactly what a snapshot
// round trip or a disk-corrupting test changed.
func runDumpDiff(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: tinyfsdemo dump-diff <pathA> <pathB> <blockNum>")
	}
	blockNum, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("block number must be an integer: %w", err)
	}

	readBlock := func(path string) ([]byte, error) {
		registry := blockdev.NewRegistry()
		h, err := registry.OpenDisk(path, 0)
		if err != nil {
			return nil, err
		}
		defer registry.CloseDisk(h)
		buf := make([]byte, blockdev.BlockSize)
		if err := registry.ReadBlock(h, blockNum, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	a, err := readBlock(args[0])
	if err != nil {
		return err
	}
	b, err := readBlock(args[1])
	if err != nil {
		return err
	}

	different, out := util.DumpByteSlicesWithDiffs(a, b, 16, true, true, false)
	if !different {
		fmt.Println("blocks are identical")
		return nil
	}
	fmt.Print(out)
	return nil
}

func runSnapshot(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: tinyfsdemo snapshot <export|import> <src> <dest> <lz4|xz>")
	}
	mode, src, dest, codec := args[0], args[1], args[2], snapshot.Codec(args[3])
	switch mode {
	case "export":
		return snapshot.Export(src, dest, codec)
	case "import":
		return snapshot.Import(src, dest, codec)
	default:
		return fmt.Errorf("unknown snapshot mode %q", mode)
	}
}

func runDemo() {
	dir, err := os.MkdirTemp("", "tinyfsdemo")
	if err != nil {
		logrus.WithError(err).Fatal("could not create a scratch directory")
	}
	defer os.RemoveAll(dir)

	log := logrus.StandardLogger()
	fs := tinyfs.New()
	fs.SetLogger(log)

	coreDemo(fs, log, dir)
	renameDemo(fs, log, dir)
	permissionsDemo(fs, log, dir)
	timestampDemo(fs, log, dir)
}

func report(log *logrus.Logger, label string, err error) {
	log.WithField("code", tinyfs.CodeOf(err)).Info(label)
}

func coreDemo(fs *tinyfs.FS, log *logrus.Logger, dir string) {
	log.Info("=== core functionality demo ===")
	path := filepath.Join(dir, "test1.bin")

	report(log, "mkfs a file that doesn't exist yet", fs.Mkfs(path, 256*20))
	report(log, "mkfs with a size that isn't a multiple of BLOCKSIZE", fs.Mkfs(path, 256+1))

	report(log, "mount the filesystem just made", fs.Mount(path))
	report(log, "mount a path that was never formatted", fs.Mount(filepath.Join(dir, "never-formatted.bin")))

	report(log, "unmount", fs.Unmount())
	report(log, "unmount again with nothing mounted", fs.Unmount())

	report(log, "re-mount for file operations", fs.Mount(path))

	file1, err := fs.OpenFile("new file")
	report(log, "open a new file", err)
	file2, err := fs.OpenFile("another")
	report(log, "open another new file", err)
	_, err = fs.OpenFile("this name is too long")
	report(log, "open a file whose name is too long", err)

	report(log, "close file2", fs.CloseFile(file2))
	report(log, "close file2 again", fs.CloseFile(file2))

	small := []byte("writing less than a block")
	report(log, "write a small buffer", fs.WriteFile(file1, small))

	large := make([]byte, 256*3+20)
	for i := range large {
		if i%2 == 1 {
			large[i] = 'E'
		} else {
			large[i] = 'D'
		}
	}
	report(log, "write a buffer spanning several blocks", fs.WriteFile(file1, large))
	report(log, "write to a closed descriptor", fs.WriteFile(file2, []byte("write to closed")))

	report(log, "seek into the file", fs.Seek(file1, 50))
	if b, err := fs.ReadByte(file1); err == nil {
		log.WithField("byte", string(rune(b))).Info("read a byte")
	} else {
		report(log, "read a byte", err)
	}
	if b, err := fs.ReadByte(file1); err == nil {
		log.WithField("byte", string(rune(b))).Info("read another byte")
	} else {
		report(log, "read another byte", err)
	}

	report(log, "seek to end of file", fs.Seek(file1, int64(len(large))))
	_, err = fs.ReadByte(file1)
	report(log, "read past end of file", err)
	report(log, "seek past end of file", fs.Seek(file1, int64(len(large))+2))
}

func renameDemo(fs *tinyfs.FS, log *logrus.Logger, dir string) {
	log.Info("=== rename demo ===")
	path := filepath.Join(dir, "rename.bin")
	report(log, "mkfs", fs.Mkfs(path, 256*10))
	report(log, "mount", fs.Mount(path))

	must(fs.OpenFile("File 1"))
	must(fs.OpenFile("File 2"))
	must(fs.OpenFile("File 3"))

	listFiles(fs, log)
	report(log, "rename File 2 to Renamed", fs.Rename("File 2", "Renamed"))
	listFiles(fs, log)

	report(log, "rename using a name that is too long", fs.Rename("File 1", "this name is too long"))
	report(log, "rename a file that does not exist", fs.Rename("DNE", "error"))
	report(log, "rename root", fs.Rename("/", "error"))
}

func listFiles(fs *tinyfs.FS, log *logrus.Logger) {
	names, err := fs.Readdir()
	if err != nil {
		report(log, "readdir", err)
		return
	}
	log.WithField("files", names).Info("directory listing")
}

func permissionsDemo(fs *tinyfs.FS, log *logrus.Logger, dir string) {
	log.Info("=== permissions demo ===")
	path := filepath.Join(dir, "permissions.bin")
	report(log, "mkfs", fs.Mkfs(path, 256*10))
	report(log, "mount", fs.Mount(path))

	file1 := must(fs.OpenFile("File 1"))

	report(log, "make File 1 read-only", fs.MakeReadOnly("File 1"))
	report(log, "write to a read-only file", fs.WriteFile(file1, []byte("should not be written")))
	report(log, "delete a read-only file", fs.DeleteFile(file1))
	report(log, "write a byte to a read-only file", fs.WriteByte(file1, 88))

	report(log, "make File 1 read-write", fs.MakeReadWrite("File 1"))
	report(log, "write to a read-write file", fs.WriteFile(file1, []byte("should be written")))
	report(log, "seek to the start before writing a byte", fs.Seek(file1, 0))
	report(log, "write a byte to a read-write file", fs.WriteByte(file1, 88))
	report(log, "delete the file", fs.DeleteFile(file1))
}

func timestampDemo(fs *tinyfs.FS, log *logrus.Logger, dir string) {
	log.Info("=== timestamp demo ===")
	path := filepath.Join(dir, "timestamps.bin")
	report(log, "mkfs", fs.Mkfs(path, 256*10))
	report(log, "mount", fs.Mount(path))

	file1 := must(fs.OpenFile("File 1"))
	logInfo(fs, log, file1, "File 1")

	file2 := must(fs.OpenFile("File 2"))
	logInfo(fs, log, file2, "File 2")

	report(log, "flip File 1's permission, updating its modify time", fs.MakeReadWrite("File 1"))
	logInfo(fs, log, file1, "File 1")

	report(log, "write to File 2, updating its modify time", fs.WriteFile(file2, []byte("write to closed")))
	report(log, "seek File 2 back to the start", fs.Seek(file2, 0))
	logInfo(fs, log, file2, "File 2")

	_, err := fs.ReadByte(file2)
	report(log, "read a byte from File 2, updating its access time", err)
	logInfo(fs, log, file2, "File 2")

	report(log, "rename File 1, updating its modify time", fs.Rename("File 1", "File 1A"))
	logInfo(fs, log, file1, "File 1A")

	report(log, "delete File 2, updating its modify time", fs.DeleteFile(file2))
	logInfo(fs, log, file2, "File 2")
}

func logInfo(fs *tinyfs.FS, log *logrus.Logger, fd file.Descriptor, label string) {
	info, err := fs.ReadFileInfo(fd)
	if err != nil {
		report(log, "readFileInfo "+label, err)
		return
	}
	log.WithFields(logrus.Fields{
		"name":     info.Name,
		"size":     info.Size,
		"created":  info.Created,
		"modified": info.Modified,
		"accessed": info.Accessed,
	}).Info(label + " metadata")
}

func must[T any](v T, err error) T {
	if err != nil {
		logrus.WithError(err).Warn("demo step failed")
	}
	return v
}
