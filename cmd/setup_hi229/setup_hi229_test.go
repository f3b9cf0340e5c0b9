package main

import (
	"testing"

	"go.viam.com/test"
)

func TestGetMsgs(t *testing.T) {
	msgs, err := getMsgs(100, "9dof")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msgs, test.ShouldHaveLength, 6)
	test.That(t, string(msgs[1]), test.ShouldEqual, "AT+MODE=1\r\n")
	test.That(t, string(msgs[3]), test.ShouldEqual, "AT+ODR=100\r\n")
	test.That(t, string(msgs[5]), test.ShouldEqual, "AT+RST\r\n")

	msgs, err = getMsgs(200, "6dof")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(msgs[1]), test.ShouldEqual, "AT+MODE=0\r\n")
	test.That(t, msgs, test.ShouldHaveLength, 7)
	test.That(t, string(msgs[3]), test.ShouldEqual, "AT+ODR=200\r\n")
	test.That(t, string(msgs[4]), test.ShouldEqual, "AT+BAUD=921600\r\n")
	test.That(t, string(msgs[6]), test.ShouldEqual, "AT+RST\r\n")

	_, err = getMsgs(100, "3dof")
	test.That(t, err, test.ShouldNotBeNil)
}
