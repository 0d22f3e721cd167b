// tags wraps go-taglib to normalise known tag variants
package tags

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"go.senan.xyz/taglib"
)

// https://taglib.org/api/p_propertymapping.html
// https://picard-docs.musicbrainz.org/downloads/MusicBrainz_Picard_Tag_Map.html

const (
	Album  = "ALBUM"
	Title  = "TITLE"
	Artist = "ARTIST"

	Lyrics = "LYRICS"
)

var alternatives = map[string]string{
	"UNSYNCEDLYRICS":     Lyrics,
	"UNSYNCED LYRICS":    Lyrics,
	"LYRICS:DESCRIPTION": Lyrics,
	"USLT:DESCRIPTION":   Lyrics,
	"©LYR":               Lyrics,
}

func ReadTags(path string) (Tags, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return Tags{}, err
	}
	var t Tags
	for k, vs := range raw {
		// canonical key wins if the file has both
		if nk := NormKey(k); nk != strings.ToUpper(k) {
			if _, ok := raw[nk]; ok {
				continue
			}
		}
		t.Set(k, vs...)
	}
	return t, nil
}

func WriteTags(path string, tags Tags) error {
	return taglib.WriteTags(path, tags.t, 0)
}

func ReplaceTags(path string, tags Tags) error {
	return taglib.WriteTags(path, tags.t, taglib.Clear)
}

func ReadProperties(path string) (taglib.Properties, error) {
	return taglib.ReadProperties(path)
}

type Tags struct {
	t map[string][]string
}

func NewTags(vs ...string) Tags {
	if len(vs)%2 != 0 {
		panic("vs should be kv pairs")
	}
	var t Tags
	for i := 0; i < len(vs)-1; i += 2 {
		t.Set(vs[i], vs[i+1])
	}
	return t
}

func (t Tags) Iter() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, k := range slices.Sorted(maps.Keys(t.t)) {
			if !yield(k, t.t[k]) {
				break
			}
		}
	}
}

func (t *Tags) Set(key string, values ...string) {
	if t.t == nil {
		t.t = map[string][]string{}
	}
	t.t[NormKey(key)] = values
}

func (t Tags) Get(key string) string {
	if vs := t.t[NormKey(key)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (t Tags) Values(key string) []string {
	return t.t[NormKey(key)]
}

func NormKey(k string) string {
	k = strings.ToUpper(k)
	if nk, ok := alternatives[k]; ok {
		return nk
	}
	return k
}
