package core

import (
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored records.
//
// Written by hand rather than generated: posting lists encode fragment ids
// and positions as deltas between consecutive values, which keeps stored
// postings compact for high-frequency terms.

var stringSliceMUS = ord.NewSliceSer[string](ord.String)

// IDMUS is the MUS serializer for ID.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	return ID(num), n, nil
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// FragmentMUS is the MUS serializer for Fragment.
var FragmentMUS = fragmentMUS{}

type fragmentMUS struct{}

func (s fragmentMUS) Marshal(v Fragment, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.ManuscriptId, bs[n:])
	n += varint.Int.Marshal(v.PageIndex, bs[n:])
	n += ord.String.Marshal(v.FileId, bs[n:])
	n += ord.String.Marshal(v.Header, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return
}

func (s fragmentMUS) Unmarshal(bs []byte) (v Fragment, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ManuscriptId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Header, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s fragmentMUS) Size(v Fragment) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.ManuscriptId)
	size += varint.Int.Size(v.PageIndex)
	size += ord.String.Size(v.FileId)
	size += ord.String.Size(v.Header)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Text)
	return
}

func (s fragmentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// PostingListMUS is the MUS serializer for PostingList.
// Fragment ids and positions are delta-encoded; both must be sorted ascending.
var PostingListMUS = postingListMUS{}

type postingListMUS struct{}

func (s postingListMUS) Marshal(v PostingList, bs []byte) (n int) {
	n = ord.String.Marshal(v.Term, bs)
	n += varint.Int.Marshal(len(v.Postings), bs[n:])
	prevId := uint64(0)
	for _, posting := range v.Postings {
		n += varint.Uint64.Marshal(uint64(posting.FragmentId)-prevId, bs[n:])
		prevId = uint64(posting.FragmentId)
		n += varint.Int.Marshal(len(posting.Positions), bs[n:])
		prevPos := uint32(0)
		for _, pos := range posting.Positions {
			n += varint.Uint32.Marshal(pos-prevPos, bs[n:])
			prevPos = pos
		}
	}
	return
}

func (s postingListMUS) Unmarshal(bs []byte) (v PostingList, n int, err error) {
	v.Term, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		err = com.ErrNegativeLength
		return
	}
	v.Postings = make([]Posting, 0, count)
	prevId := uint64(0)
	for i := 0; i < count; i++ {
		var delta uint64
		delta, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		prevId += delta
		var posCount int
		posCount, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		if posCount < 0 {
			err = com.ErrNegativeLength
			return
		}
		positions := make([]uint32, 0, posCount)
		prevPos := uint32(0)
		for j := 0; j < posCount; j++ {
			var posDelta uint32
			posDelta, n1, err = varint.Uint32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			prevPos += posDelta
			positions = append(positions, prevPos)
		}
		v.Postings = append(v.Postings, Posting{
			FragmentId: ID(prevId),
			Positions:  positions,
		})
	}
	return
}

func (s postingListMUS) Size(v PostingList) (size int) {
	size = ord.String.Size(v.Term)
	size += varint.Int.Size(len(v.Postings))
	prevId := uint64(0)
	for _, posting := range v.Postings {
		size += varint.Uint64.Size(uint64(posting.FragmentId) - prevId)
		prevId = uint64(posting.FragmentId)
		size += varint.Int.Size(len(posting.Positions))
		prevPos := uint32(0)
		for _, pos := range posting.Positions {
			size += varint.Uint32.Size(pos - prevPos)
			prevPos = pos
		}
	}
	return
}

func (s postingListMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		return n, com.ErrNegativeLength
	}
	for i := 0; i < count; i++ {
		n1, err = varint.Uint64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
		var posCount int
		posCount, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		if posCount < 0 {
			return n, com.ErrNegativeLength
		}
		for j := 0; j < posCount; j++ {
			n1, err = varint.Uint32.Skip(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	return
}

// IndexManifestMUS is the MUS serializer for IndexManifest.
// BuiltAt is stored with microsecond precision.
var IndexManifestMUS = indexManifestMUS{}

type indexManifestMUS struct{}

func (s indexManifestMUS) Marshal(v IndexManifest, bs []byte) (n int) {
	n = varint.Int64.Marshal(v.BuiltAt.UnixMicro(), bs)
	n += varint.Int.Marshal(v.FragmentCount, bs[n:])
	n += varint.Int.Marshal(v.TermCount, bs[n:])
	n += varint.Uint64.Marshal(v.TokenCount, bs[n:])
	n += stringSliceMUS.Marshal(v.Sources, bs[n:])
	return
}

func (s indexManifestMUS) Unmarshal(bs []byte) (v IndexManifest, n int, err error) {
	var builtAt int64
	builtAt, n, err = varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.BuiltAt = time.UnixMicro(builtAt).UTC()
	var n1 int
	v.FragmentCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TermCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TokenCount, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Sources, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexManifestMUS) Size(v IndexManifest) (size int) {
	size = varint.Int64.Size(v.BuiltAt.UnixMicro())
	size += varint.Int.Size(v.FragmentCount)
	size += varint.Int.Size(v.TermCount)
	size += varint.Uint64.Size(v.TokenCount)
	size += stringSliceMUS.Size(v.Sources)
	return
}

func (s indexManifestMUS) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int64.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = stringSliceMUS.Skip(bs[n:])
	n += n1
	return
}
