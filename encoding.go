package parlex

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/DataDog/zstd"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// The on-disk artifact format: a small uncompressed header (magic,
// format version, build id) followed by a zstd-compressed payload
// holding the four tables and a lexeme-name string table. The merge
// table is stored densely at its logical K×K size, whatever the
// in-memory capacity was.
var artifactMagic = [4]byte{'P', 'L', 'X', 'A'}

const artifactVersion uint16 = 1

// noLexeme marks a final-states entry with no lexeme attached.
const noLexeme = ^uint32(0)

// Encode serializes the artifact to w, stamping it with a fresh build
// id unless the artifact already carries one from a previous decode.
func (pl *ParallelLexer) Encode(w io.Writer) error {
	id := pl.buildID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var payload bytes.Buffer
	le := binary.LittleEndian

	writeTransition := func(t Transition) {
		var buf [5]byte
		le.PutUint32(buf[:4], uint32(t.Result))
		if t.ProducesLexeme {
			buf[4] = 1
		}
		payload.Write(buf[:])
	}
	writeUint32 := func(v uint32) {
		var buf [4]byte
		le.PutUint32(buf[:], v)
		payload.Write(buf[:])
	}

	writeUint32(uint32(len(pl.initialStates)))
	for _, t := range pl.initialStates {
		writeTransition(t)
	}

	k := pl.mergeTable.States()
	writeUint32(uint32(k))
	writeUint32(uint32(pl.identityIndex))
	for second := 0; second < k; second++ {
		for first := 0; first < k; first++ {
			writeTransition(pl.mergeTable.Get(StateIndex(first), StateIndex(second)))
		}
	}

	// Final states reference the string table by position; lexeme
	// handles that are pointer-identical share an entry.
	names := make([]string, 0, 8)
	nameIndex := make(map[*Lexeme]uint32)
	for _, lx := range pl.finalStates {
		if lx == nil {
			continue
		}
		if _, ok := nameIndex[lx]; !ok {
			nameIndex[lx] = uint32(len(names))
			names = append(names, lx.Name)
		}
	}
	for _, lx := range pl.finalStates {
		if lx == nil {
			writeUint32(noLexeme)
		} else {
			writeUint32(nameIndex[lx])
		}
	}
	writeUint32(uint32(len(names)))
	for _, name := range names {
		writeUint32(uint32(len(name)))
		payload.WriteString(name)
	}

	compressed, err := zstd.CompressLevel(nil, payload.Bytes(), zstd.BestSpeed)
	if err != nil {
		return errors.Wrap(err, "can not compress artifact")
	}

	header := make([]byte, 0, 4+2+16)
	header = append(header, artifactMagic[:]...)
	header = le.AppendUint16(header, artifactVersion)
	header = append(header, id[:]...)
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "can not write artifact header")
	}
	if _, err := w.Write(compressed); err != nil {
		return errors.Wrap(err, "can not write artifact payload")
	}
	return nil
}

// Decode reads an artifact previously written by Encode.
func Decode(r io.Reader) (*ParallelLexer, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "can not read artifact")
	}
	if len(raw) < 4+2+16 {
		return nil, errors.New("artifact truncated before header end")
	}
	if !bytes.Equal(raw[:4], artifactMagic[:]) {
		return nil, errors.New("not a parallel lexer artifact")
	}
	le := binary.LittleEndian
	if version := le.Uint16(raw[4:6]); version != artifactVersion {
		return nil, errors.Errorf("unsupported artifact version %d", version)
	}
	id, err := uuid.FromBytes(raw[6:22])
	if err != nil {
		return nil, errors.Wrap(err, "can not read build id")
	}

	payload, err := zstd.Decompress(nil, raw[22:])
	if err != nil {
		return nil, errors.Wrap(err, "can not decompress artifact")
	}

	dec := payloadReader{data: payload}
	pl := &ParallelLexer{buildID: id}

	numInitial, err := dec.uint32()
	if err != nil {
		return nil, err
	}
	pl.initialStates = make([]Transition, numInitial)
	for i := range pl.initialStates {
		if pl.initialStates[i], err = dec.transition(); err != nil {
			return nil, err
		}
	}

	k, err := dec.uint32()
	if err != nil {
		return nil, err
	}
	identity, err := dec.uint32()
	if err != nil {
		return nil, err
	}
	if identity >= k {
		return nil, errors.Errorf("identity index %d outside table of side %d", identity, k)
	}
	pl.identityIndex = StateIndex(identity)

	pl.mergeTable = &MergeTable{}
	pl.mergeTable.resize(int(k))
	for second := uint32(0); second < k; second++ {
		for first := uint32(0); first < k; first++ {
			t, err := dec.transition()
			if err != nil {
				return nil, err
			}
			pl.mergeTable.set(StateIndex(first), StateIndex(second), t)
		}
	}

	nameRefs := make([]uint32, k)
	for i := range nameRefs {
		if nameRefs[i], err = dec.uint32(); err != nil {
			return nil, err
		}
	}
	numNames, err := dec.uint32()
	if err != nil {
		return nil, err
	}
	lexemes := make([]*Lexeme, numNames)
	for i := range lexemes {
		name, err := dec.string()
		if err != nil {
			return nil, err
		}
		lexemes[i] = &Lexeme{Name: name}
	}
	pl.finalStates = make([]*Lexeme, k)
	for i, ref := range nameRefs {
		if ref == noLexeme {
			continue
		}
		if ref >= numNames {
			return nil, errors.Errorf("final state %d references lexeme %d of %d", i, ref, numNames)
		}
		pl.finalStates[i] = lexemes[ref]
	}

	return pl, nil
}

type payloadReader struct {
	data []byte
	pos  int
}

func (pr *payloadReader) take(n int) ([]byte, error) {
	if pr.pos+n > len(pr.data) {
		return nil, errors.New("artifact payload truncated")
	}
	out := pr.data[pr.pos : pr.pos+n]
	pr.pos += n
	return out, nil
}

func (pr *payloadReader) uint32() (uint32, error) {
	buf, err := pr.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (pr *payloadReader) transition() (Transition, error) {
	buf, err := pr.take(5)
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		Result:         StateIndex(binary.LittleEndian.Uint32(buf[:4])),
		ProducesLexeme: buf[4] == 1,
	}, nil
}

func (pr *payloadReader) string() (string, error) {
	length, err := pr.uint32()
	if err != nil {
		return "", err
	}
	buf, err := pr.take(int(length))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
