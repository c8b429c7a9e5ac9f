package http

import (
	"net/http"
	"strconv"

	"stayvault/pkg/config"
	apperrors "stayvault/pkg/errors"
)

// CallerIDHeader carries the opaque caller identity attached by the dispatch
// layer. The core treats it as an opaque membership-test token.
const CallerIDHeader = "X-Caller-Id"

func CallerID(r *http.Request) string {
	return r.Header.Get(CallerIDHeader)
}

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}
