// file: internals/helpers/aggregate/aggregate.go
package aggregate

// Summary menyimpan jumlah per kategori dari satu kali pass.
type Summary[C comparable] struct {
	Counts map[C]int
	Total  int
}

// Summarize mengklasifikasikan setiap record tepat sekali.
func Summarize[T any, C comparable](records []T, classify func(T) C) Summary[C] {
	s := Summary[C]{Counts: make(map[C]int), Total: len(records)}
	for _, r := range records {
		s.Counts[classify(r)]++
	}
	return s
}

func (s Summary[C]) Count(c C) int { return s.Counts[c] }

func (s Summary[C]) Rate(c C) float64 { return Rate(s.Counts[c], s.Total) }

func (s Summary[C]) Percent(c C) int { return Percent(s.Counts[c], s.Total) }

// CountOf menjumlahkan beberapa kategori sekaligus (mis. present + late).
func (s Summary[C]) CountOf(cs ...C) int {
	n := 0
	for _, c := range cs {
		n += s.Counts[c]
	}
	return n
}

type Bucket[C comparable] struct {
	Key     C       `json:"key"`
	Count   int     `json:"count"`
	Rate    float64 `json:"rate"`
	Percent int     `json:"percent"`
}

// Ordered mengembalikan bucket sesuai urutan tampilan, kategori kosong tetap muncul.
func (s Summary[C]) Ordered(keys ...C) []Bucket[C] {
	out := make([]Bucket[C], 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket[C]{
			Key:     k,
			Count:   s.Counts[k],
			Rate:    s.Rate(k),
			Percent: s.Percent(k),
		})
	}
	return out
}

// Rate = count/total, 0 bila total 0.
func Rate(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// Percent dibulatkan round-half-up ke bilangan bulat terdekat.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*count + total) / (2 * total)
}
