// Package codec implements the Huffman transport encoding used for world
// state messages. Output is a literal string of '0'/'1' characters plus the
// full code table, so a receiver can decode any message on its own.
package codec

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidCode means the encoded text holds a symbol other than '0'
	// or '1', or a bit sequence with no matching code.
	ErrInvalidCode = errors.New("invalid huffman code")
	// ErrTruncatedCode means the input ended partway through a code.
	ErrTruncatedCode = errors.New("truncated huffman code")
	// ErrInvalidTable means the table is not a usable prefix code.
	ErrInvalidTable = errors.New("invalid huffman code table")
)

// CodeTable maps each character of the input to its bit string.
type CodeTable map[string]string

type huffmanNode struct {
	char        string
	freq        int
	order       int // creation order, makes the tree deterministic
	left, right *huffmanNode
}

func (n *huffmanNode) leaf() bool {
	return n.left == nil && n.right == nil
}

type nodeQueue []*huffmanNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].freq != q[j].freq {
		return q[i].freq < q[j].freq
	}
	return q[i].order < q[j].order
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*huffmanNode)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// Frequencies counts each character (rune) of input. Bytes that are not
// valid UTF-8 count as characters of their own.
func Frequencies(input string) map[string]int {
	freq := make(map[string]int)
	forEachSymbol(input, func(sym string) {
		freq[sym]++
	})
	return freq
}

// forEachSymbol splits input into runes, keeping invalid bytes as raw
// one-byte symbols so they survive a round trip.
func forEachSymbol(input string, fn func(sym string)) {
	for i := 0; i < len(input); {
		_, size := utf8.DecodeRuneInString(input[i:])
		fn(input[i : i+size])
		i += size
	}
}

// buildTree merges the two least frequent nodes until one root remains.
func buildTree(freq map[string]int) *huffmanNode {
	if len(freq) == 0 {
		return nil
	}

	chars := make([]string, 0, len(freq))
	for c := range freq {
		chars = append(chars, c)
	}
	sort.Strings(chars)

	q := make(nodeQueue, 0, len(chars))
	order := 0
	for _, c := range chars {
		q = append(q, &huffmanNode{char: c, freq: freq[c], order: order})
		order++
	}
	heap.Init(&q)

	for q.Len() > 1 {
		left := heap.Pop(&q).(*huffmanNode)
		right := heap.Pop(&q).(*huffmanNode)
		heap.Push(&q, &huffmanNode{
			freq:  left.freq + right.freq,
			order: order,
			left:  left,
			right: right,
		})
		order++
	}
	return q[0]
}

// BuildCodeTable returns the prefix code for the given frequencies. A single
// distinct character gets the code "0" so it still round-trips.
func BuildCodeTable(freq map[string]int) CodeTable {
	table := make(CodeTable, len(freq))
	root := buildTree(freq)
	if root == nil {
		return table
	}
	if root.leaf() {
		table[root.char] = "0"
		return table
	}
	assignCodes(root, "", table)
	return table
}

func assignCodes(n *huffmanNode, prefix string, table CodeTable) {
	if n.leaf() {
		table[n.char] = prefix
		return
	}
	assignCodes(n.left, prefix+"0", table)
	assignCodes(n.right, prefix+"1", table)
}

// Encode compresses input. The empty string encodes to "" with an empty
// table.
func Encode(input string) (string, CodeTable) {
	table := BuildCodeTable(Frequencies(input))

	var b strings.Builder
	forEachSymbol(input, func(sym string) {
		b.WriteString(table[sym])
	})
	return b.String(), table
}

type decodeNode struct {
	char     string
	terminal bool
	next     [2]*decodeNode
}

func buildDecodeTree(table CodeTable) (*decodeNode, error) {
	root := &decodeNode{}
	for char, code := range table {
		if code == "" {
			return nil, fmt.Errorf("%w: empty code for %q", ErrInvalidTable, char)
		}
		n := root
		for i := 0; i < len(code); i++ {
			if n.terminal {
				return nil, fmt.Errorf("%w: code for %q extends another code", ErrInvalidTable, char)
			}
			bit, err := bitOf(code[i])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidTable, code)
			}
			if n.next[bit] == nil {
				n.next[bit] = &decodeNode{}
			}
			n = n.next[bit]
		}
		if n.terminal || n.next[0] != nil || n.next[1] != nil {
			return nil, fmt.Errorf("%w: code for %q is not a unique prefix", ErrInvalidTable, char)
		}
		n.terminal = true
		n.char = char
	}
	return root, nil
}

func bitOf(c byte) (int, error) {
	switch c {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, ErrInvalidCode
}

// Decode walks encoded through the prefix tree built from table and returns
// the original text.
func Decode(encoded string, table CodeTable) (string, error) {
	if encoded == "" {
		return "", nil
	}
	root, err := buildDecodeTree(table)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	n := root
	for i := 0; i < len(encoded); i++ {
		bit, err := bitOf(encoded[i])
		if err != nil {
			return "", fmt.Errorf("%w: symbol %q at %d", ErrInvalidCode, encoded[i], i)
		}
		n = n.next[bit]
		if n == nil {
			return "", fmt.Errorf("%w: no code at offset %d", ErrInvalidCode, i)
		}
		if n.terminal {
			b.WriteString(n.char)
			n = root
		}
	}
	if n != root {
		return "", ErrTruncatedCode
	}
	return b.String(), nil
}
