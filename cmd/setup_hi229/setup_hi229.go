package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tarm/serial"
)

// getMsgs builds the AT command sequence for the given output rate and fusion
// mode. The compass needs the magnetometer, so 9dof is the default.
func getMsgs(fps int, mode string) ([][]byte, error) {
	var modeVal string
	switch mode {
	case "6dof":
		modeVal = "0"
	case "9dof":
		modeVal = "1"
	default:
		return nil, errors.New("invalid mode")
	}

	msgs := [][]byte{
		[]byte("AT+EOUT=0\r\n"),
		[]byte(fmt.Sprintf("AT+MODE=%s\r\n", modeVal)),
		[]byte("AT+SETPTL=91\r\n"),
		[]byte(fmt.Sprintf("AT+ODR=%d\r\n", fps)),
	}

	// 200 Hz does not fit into 115200 baud
	if fps == 200 {
		msgs = append(msgs, []byte("AT+BAUD=921600\r\n"))
	}

	msgs = append(msgs, []byte("AT+EOUT=1\r\n"), []byte("AT+RST\r\n"))

	return msgs, nil
}

func configure(port string, fps int, mode string, baud int) error {
	msgs, err := getMsgs(fps, mode)
	if err != nil {
		return err
	}

	s, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud, ReadTimeout: time.Second * 5})
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	buf := make([]byte, 128)
	for _, msg := range msgs {
		if _, err := s.Write(msg); err != nil {
			return err
		}
		time.Sleep(2 * time.Second)

		n, err := s.Read(buf)
		if err != nil {
			return err
		}
		log.Infof("host -> %q imu -> %q", msg, buf[:n])
	}

	return nil
}

var rootCmd = &cobra.Command{
	Use:   "setup_hi229",
	Short: "setup_hi229 configures a HI229 for the compass",
	Long: "setup_hi229 switches a HI229 to the 0x91 packet at the given rate and fusion mode.\n" +
		"At 200 Hz the device is moved to 921600 baud, so set imu[].baud: 921600 in the compass config.",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		fps, _ := cmd.Flags().GetInt("fps")
		mode, _ := cmd.Flags().GetString("mode")
		baud, _ := cmd.Flags().GetInt("baud")

		if port == "" || (fps != 100 && fps != 200) || (mode != "6dof" && mode != "9dof") {
			return errors.New("--port must be specified along with valid --fps (100 or 200) and --mode (6dof or 9dof)")
		}
		return configure(port, fps, mode, baud)
	},
}

func main() {
	rootCmd.Flags().String("port", "", "The serial port to use")
	rootCmd.Flags().Int("fps", 100, "Frequency in Hz (100 or 200)")
	rootCmd.Flags().String("mode", "9dof", "Mode (6dof or 9dof)")
	rootCmd.Flags().Int("baud", 115200, "Baud rate")

	if err := rootCmd.Execute(); err != nil {
		log.Errorln(err)
		os.Exit(1)
	}
}
