package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/pflag"
)

const Type = "path"

// Flag is a pflag.Value holding a file path. The path is stat'ed on Set so
// callers can ask whether it exists without touching the filesystem again.
type Flag struct {
	path *string
	fs.FileInfo
}

func (f *Flag) Type() string {
	return Type
}

func (f *Flag) String() string {
	if f.path == nil {
		return ""
	}
	return *f.path
}

// Exists reports whether the path pointed to an existing file at Set time.
func (f *Flag) Exists() bool {
	return f.FileInfo != nil
}

// Open opens the file for reading. It fails if the path did not exist when
// the flag was set.
func (f *Flag) Open() (io.ReadCloser, error) {
	if !f.Exists() {
		return nil, fmt.Errorf("file %q does not exist", f.String())
	}
	return os.Open(*f.path)
}

func (f *Flag) Set(value string) error {
	if f.path == nil {
		f.path = new(string)
	}
	*f.path = value

	info, err := os.Stat(value)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.FileInfo = nil
			return nil
		}
		return fmt.Errorf("unable to stat path %q: %w", value, err)
	}
	f.FileInfo = info

	return nil
}

func Var(f *pflag.FlagSet, name string, value string, usage string) {
	f.Var(newWithDefault(value), name, usage)
}

func VarP(f *pflag.FlagSet, name, shorthand string, value string, usage string) {
	f.VarP(newWithDefault(value), name, shorthand, usage)
}

func newWithDefault(value string) *Flag {
	flag := &Flag{}
	// stat errors on the default are surfaced once the flag is read
	_ = flag.Set(value)
	return flag
}

func Get(f *pflag.FlagSet, name string) (*Flag, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag accessed but not defined: %s", name)
	}

	val, ok := flag.Value.(*Flag)
	if !ok {
		return nil, fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return val, nil
}
