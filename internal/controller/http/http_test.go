package http

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/heading"
	"compass_apiserver/internal/pb"
	"compass_apiserver/internal/testutils/inject"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.viam.com/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(running *bool) *inject.Manager {
	return &inject.Manager{
		StartFunc:           func() error { *running = true; return nil },
		StopFunc:            func() error { *running = false; return nil },
		RunningFunc:         func() bool { return *running },
		FaultedFunc:         func() bool { return false },
		ManuallyStoppedFunc: func() bool { return !*running },
		ModeFunc:            func() heading.Mode { return heading.ModeRotationVector },
		SessionFunc:         func() string { return "session" },
		AzimuthFunc:         func() int { return 270 },
		TextFunc:            func() string { return "270°" },
		ListDevFunc:         func() ([]string, error) { return []string{"imu_0", "sim_0"}, nil },
		ReadFunc: func(cursor int64) (int64, []heading.Record, error) {
			return 4, []heading.Record{{Session: "session", Seq: 4, Azimuth: 270, Text: "270°", Mode: heading.ModeRotationVector}}, nil
		},
	}
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHeading(t *testing.T) {
	running := false
	router := NewRouter(newManager(&running), config.InfoOpt{})

	w := do(router, http.MethodGet, "/v1/heading", "")
	test.That(t, w.Code, test.ShouldEqual, http.StatusServiceUnavailable)

	running = true
	w = do(router, http.MethodGet, "/v1/heading", "")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var h pb.Heading
	test.That(t, json.Unmarshal(w.Body.Bytes(), &h), test.ShouldBeNil)
	test.That(t, h.Azimuth, test.ShouldEqual, 270)
	test.That(t, h.Text, test.ShouldEqual, "270°")
	test.That(t, h.Mode, test.ShouldEqual, heading.ModeRotationVector.String())
}

func TestForeground(t *testing.T) {
	running := false
	m := newManager(&running)
	router := NewRouter(m, config.InfoOpt{})

	w := do(router, http.MethodPut, "/v1/foreground", `{"foreground": true}`)
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var st pb.Status
	test.That(t, json.Unmarshal(w.Body.Bytes(), &st), test.ShouldBeNil)
	test.That(t, st.Running, test.ShouldBeTrue)
	test.That(t, running, test.ShouldBeTrue)

	w = do(router, http.MethodPut, "/v1/foreground", `{"foreground": false}`)
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, running, test.ShouldBeFalse)

	w = do(router, http.MethodPut, "/v1/foreground", `{}`)
	test.That(t, w.Code, test.ShouldEqual, http.StatusBadRequest)

	m.StartFunc = func() error { return errors.New("boom") }
	w = do(router, http.MethodPut, "/v1/foreground", `{"foreground": true}`)
	test.That(t, w.Code, test.ShouldEqual, http.StatusInternalServerError)
	test.That(t, json.Unmarshal(w.Body.Bytes(), &st), test.ShouldBeNil)
	test.That(t, st.Err, test.ShouldEqual, "boom")
}

func TestStatusDevicesInfo(t *testing.T) {
	running := true
	router := NewRouter(newManager(&running), config.InfoOpt{Title: "Compass", Message: "hello"})

	w := do(router, http.MethodGet, "/v1/status", "")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var st pb.Status
	test.That(t, json.Unmarshal(w.Body.Bytes(), &st), test.ShouldBeNil)
	test.That(t, st.Session, test.ShouldEqual, "session")
	test.That(t, st.Text, test.ShouldEqual, "270°")

	w = do(router, http.MethodGet, "/v1/devices", "")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var devs pb.Devices
	test.That(t, json.Unmarshal(w.Body.Bytes(), &devs), test.ShouldBeNil)
	test.That(t, devs.IDs, test.ShouldResemble, []string{"imu_0", "sim_0"})

	w = do(router, http.MethodGet, "/v1/info", "")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	var info pb.Info
	test.That(t, json.Unmarshal(w.Body.Bytes(), &info), test.ShouldBeNil)
	test.That(t, info, test.ShouldResemble, pb.Info{Title: "Compass", Message: "hello"})
}
