package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

func TestStatusFor(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("%w: empty body", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{errs.Validationf("op", "bad"), http.StatusBadRequest, "validation_error"},
			{errs.NotFoundf("op", "gone"), http.StatusNotFound, "not_found"},
			{errs.NewKind("op", errs.ErrConflict), http.StatusConflict, "conflict"},
			{errs.WrapKind("op", errs.ErrStorage, errors.New("disk")), http.StatusServiceUnavailable, "storage_unavailable"},
			{context.DeadlineExceeded, http.StatusServiceUnavailable, "storage_unavailable"},
			{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "payload_too_large"},
			{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			status, code := statusFor(tc.err)
			So(status, ShouldEqual, tc.status)
			So(code, ShouldEqual, tc.code)
		}
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(http.StatusServiceUnavailable), ShouldEqual, "unavailable")
		So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
		So(getErrorType(http.StatusConflict), ShouldEqual, "conflict")
		So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
	})
}
