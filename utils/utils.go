package utils

import (
	rndm "math/rand"
	"net/http"
	"strconv"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateID creates a random identifier of length n with a leading letter.
func GenerateID(n int) string {
	if n < 2 {
		n = 2
	}
	return "p" + GenerateRandomString(n-1)
}

// --- Query Helpers ---

type QueryOptions struct {
	Limit  int
	Skip   int
	Search string
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	skip, _ := strconv.Atoi(q.Get("skip"))
	if skip < 0 {
		skip = 0
	}

	return QueryOptions{
		Limit:  limit,
		Skip:   skip,
		Search: q.Get("q"),
	}
}
