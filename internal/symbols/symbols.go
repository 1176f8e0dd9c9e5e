package symbols

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
	"io"
	"os"
	"sort"

	"binfind/internal/domain"
	"binfind/internal/logging"
)

// Function is one function symbol in the binary's virtual address space
type Function struct {
	Name  string
	Start uint64
	Size  uint64
}

// Region maps a range of file offsets onto virtual addresses
type Region struct {
	Offset uint64
	Size   uint64
	Addr   uint64
}

// Resolver finds the function that owns a file offset. The zero value
// resolves nothing. Safe for concurrent use once built.
type Resolver struct {
	format  string
	funcs   []Function
	regions []Region
}

// NewResolver builds a resolver from functions and regions. Without regions
// file offsets and addresses are the same.
func NewResolver(format string, funcs []Function, regions []Region) *Resolver {
	fs := make([]Function, 0, len(funcs))
	for _, f := range funcs {
		if f.Name != "" {
			fs = append(fs, f)
		}
	}
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Start < fs[j].Start })
	for i := range fs {
		if fs[i].Size == 0 && i+1 < len(fs) {
			fs[i].Size = fs[i+1].Start - fs[i].Start
		}
	}
	rs := append([]Region(nil), regions...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Offset < rs[j].Offset })
	return &Resolver{format: format, funcs: fs, regions: rs}
}

// Format names the object format the symbols came from, "" when none
func (r *Resolver) Format() string { return r.format }

// Len returns the number of known functions
func (r *Resolver) Len() int { return len(r.funcs) }

// Resolve returns the function containing the file offset, with its start
// expressed as a file offset, or nil
func (r *Resolver) Resolve(offset uint64) *domain.FunctionRef {
	if r == nil || len(r.funcs) == 0 {
		return nil
	}
	addr, ok := r.toAddr(offset)
	if !ok {
		return nil
	}
	i := sort.Search(len(r.funcs), func(i int) bool { return r.funcs[i].Start > addr }) - 1
	if i < 0 {
		return nil
	}
	f := r.funcs[i]
	if addr-f.Start >= f.Size {
		return nil
	}
	return &domain.FunctionRef{
		Name:  f.Name,
		Start: offset - (addr - f.Start),
		Size:  f.Size,
	}
}

func (r *Resolver) toAddr(offset uint64) (uint64, bool) {
	if len(r.regions) == 0 {
		return offset, true
	}
	i := sort.Search(len(r.regions), func(i int) bool { return r.regions[i].Offset > offset }) - 1
	if i < 0 {
		return 0, false
	}
	reg := r.regions[i]
	if offset-reg.Offset >= reg.Size {
		return 0, false
	}
	return reg.Addr + (offset - reg.Offset), true
}

// Open reads the function symbols of an ELF, Mach-O or PE file. Files in
// other formats, or without symbols, give an empty resolver.
func Open(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return &Resolver{}, nil
	}

	var r *Resolver
	switch {
	case bytes.Equal(magic, []byte(elf.ELFMAG)):
		r, err = openELF(f)
	case isMachO(magic):
		r, err = openMachO(f)
	case magic[0] == 'M' && magic[1] == 'Z':
		r, err = openPE(f)
	default:
		return &Resolver{}, nil
	}
	if err != nil {
		logging.Warn("symbols unavailable", "path", path, "error", err)
		return &Resolver{}, nil
	}
	logging.Debug("symbols loaded", "path", path, "format", r.format, "functions", r.Len())
	return r, nil
}

func openELF(ra io.ReaderAt) (*Resolver, error) {
	f, err := elf.NewFile(ra)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		syms, err = f.DynamicSymbols()
		if err != nil {
			return NewResolver("elf", nil, nil), nil
		}
	}

	var funcs []Function
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 {
			continue
		}
		funcs = append(funcs, Function{Name: s.Name, Start: s.Value, Size: s.Size})
	}

	var regions []Region
	for _, s := range f.Sections {
		if s.Type == elf.SHT_NOBITS || s.Addr == 0 || s.Size == 0 {
			continue
		}
		regions = append(regions, Region{Offset: s.Offset, Size: s.Size, Addr: s.Addr})
	}
	return NewResolver("elf", funcs, regions), nil
}

func isMachO(magic []byte) bool {
	switch uint32(magic[0])<<24 | uint32(magic[1])<<16 | uint32(magic[2])<<8 | uint32(magic[3]) {
	case macho.Magic32, macho.Magic64, 0xcefaedfe, 0xcffaedfe:
		return true
	}
	return false
}

func openMachO(ra io.ReaderAt) (*Resolver, error) {
	f, err := macho.NewFile(ra)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	textSect := -1
	var regions []Region
	for i, s := range f.Sections {
		if s.Seg == "__TEXT" && s.Name == "__text" {
			textSect = i + 1
		}
		if s.Offset == 0 || s.Size == 0 {
			continue
		}
		regions = append(regions, Region{Offset: uint64(s.Offset), Size: s.Size, Addr: s.Addr})
	}

	var funcs []Function
	if f.Symtab != nil {
		for _, s := range f.Symtab.Syms {
			// skip debugger entries
			if s.Type&0xe0 != 0 || int(s.Sect) != textSect {
				continue
			}
			funcs = append(funcs, Function{Name: s.Name, Start: s.Value})
		}
	}
	return NewResolver("macho", funcs, regions), nil
}

func openPE(ra io.ReaderAt) (*Resolver, error) {
	f, err := pe.NewFile(ra)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	const functionType = 0x20
	var funcs []Function
	for _, s := range f.Symbols {
		if s.Type != functionType || s.SectionNumber <= 0 || int(s.SectionNumber) > len(f.Sections) {
			continue
		}
		sect := f.Sections[s.SectionNumber-1]
		funcs = append(funcs, Function{
			Name:  s.Name,
			Start: uint64(sect.Offset) + uint64(s.Value),
		})
	}
	// PE symbols are placed directly in file offset space
	return NewResolver("pe", funcs, nil), nil
}
