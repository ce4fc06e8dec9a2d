package models

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"unicode"
)

const (
	defaultFilterBits   = 8192
	defaultFilterHashes = 5
)

// TitleFilter is a per-user Bloom filter over the normalized titles of reps the user was given.
// It catches repeated themes older than the prompt history window.
type TitleFilter struct {
	UserID    string `json:"userId" dynamodbav:"userId"`
	BitArray  []byte `json:"bitArray" dynamodbav:"bitArray"`
	Size      int    `json:"size" dynamodbav:"size"` // bits
	HashCount int    `json:"hashCount" dynamodbav:"hashCount"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

func NewTitleFilter(userID string) *TitleFilter {
	return &TitleFilter{
		UserID:    userID,
		BitArray:  make([]byte, (defaultFilterBits+7)/8),
		Size:      defaultFilterBits,
		HashCount: defaultFilterHashes,
	}
}

// Add records a title.
func (f *TitleFilter) Add(title string) {
	for _, h := range f.hashes(title) {
		idx := h % uint64(f.Size)
		f.BitArray[idx/8] |= 1 << (idx % 8)
	}
}

// Contains reports whether title may have been added. False positives are possible.
func (f *TitleFilter) Contains(title string) bool {
	if f.Size == 0 || len(f.BitArray) < (f.Size+7)/8 {
		return false
	}
	for _, h := range f.hashes(title) {
		idx := h % uint64(f.Size)
		if f.BitArray[idx/8]&(1<<(idx%8)) == 0 {
			return false
		}
	}
	return true
}

// double hashing over sha256 of the normalized title
func (f *TitleFilter) hashes(title string) []uint64 {
	sum := sha256.Sum256([]byte(normalizeTitle(title)))
	h1 := binary.BigEndian.Uint64(sum[:8])
	h2 := binary.BigEndian.Uint64(sum[8:16])

	out := make([]uint64, f.HashCount)
	for i := range out {
		out[i] = h1 + uint64(i)*h2
	}
	return out
}

func normalizeTitle(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
