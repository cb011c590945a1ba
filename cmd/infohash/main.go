package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcheviron/infohash/cmd/infohash/bencode"
	"github.com/mcheviron/infohash/cmd/infohash/magnet"
	"github.com/mcheviron/infohash/cmd/infohash/metainfo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

func main() {
	logger := zap.L()
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Error("Missing command", zap.String("usage", "infohash <hash|info|decode|dump|magnet|magnet_parse> <arg>"))
		os.Exit(1)
	}
	command := os.Args[1]

	handlers := map[string]func([]string) error{
		"hash":         handleHash,
		"info":         handleInfo,
		"decode":       handleDecode,
		"dump":         handleDump,
		"magnet":       handleMagnet,
		"magnet_parse": handleMagnetParse,
	}

	handler, ok := handlers[command]
	if !ok {
		logger.Error("Unknown command", zap.String("command", command))
		os.Exit(1)
	}
	if err := handler(os.Args); err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// Command handlers

func handleHash(args []string) error {
	logger := zap.L()
	if len(args) != 3 {
		return fmt.Errorf("usage: hash <torrent-file>")
	}
	filePath := args[2]

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open torrent file: %w", err)
	}
	defer f.Close()

	infoHash, err := metainfo.InfoHash(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("failed to compute info hash: %w", err)
	}

	logger.Debug("Computed info hash", zap.String("file", filePath))
	fmt.Println(hex.EncodeToString(infoHash[:]))
	return nil
}

func handleInfo(args []string) error {
	logger := zap.L()
	if len(args) < 3 {
		logger.Error("File path is required for info command")
		return fmt.Errorf("file path required")
	}
	filePath := args[2]

	torrent, err := metainfo.ParseFile(filePath)
	if err != nil {
		logger.Error("Failed to parse torrent file", zap.String("file", filePath), zap.Error(err))
		return err
	}

	fmt.Printf("Tracker URL: %s\n", torrent.Announce)
	fmt.Printf("Length: %d\n", torrent.TotalLength())
	fmt.Printf("Info Hash: %x\n", torrent.InfoHash)
	fmt.Printf("Piece Length: %d\n", torrent.Info.PieceLength)
	fmt.Println("Piece Hashes:")
	for _, pieceHash := range torrent.PieceHashes() {
		fmt.Printf("%x\n", pieceHash)
	}
	return nil
}

func handleDecode(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: decode <bencoded-value>")
	}

	decoded, err := bencode.DecodeBytes([]byte(args[2]))
	if err != nil {
		return err
	}
	jsonOutput, err := json.Marshal(bencode.ToAny(decoded))
	if err != nil {
		return err
	}
	fmt.Println(string(jsonOutput))
	return nil
}

func handleDump(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: dump <torrent-file>")
	}

	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read torrent file: %w", err)
	}

	root, err := bencode.DecodeBytes(data)
	if err != nil {
		return err
	}
	return bencode.Fprint(os.Stdout, root)
}

func handleMagnet(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: magnet <torrent-file>")
	}

	torrent, err := metainfo.ParseFile(args[2])
	if err != nil {
		return err
	}

	fmt.Println(magnet.New(torrent.InfoHash, torrent.Info.Name, torrent.Trackers()...))
	return nil
}

func handleMagnetParse(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: magnet_parse <magnet-link>")
	}

	magnetLink := args[2]
	link, err := magnet.Parse(magnetLink)
	if err != nil {
		return fmt.Errorf("failed to parse magnet link: %w", err)
	}

	// At least one tracker is required
	if len(link.Trackers) == 0 {
		return fmt.Errorf("no trackers found in magnet link")
	}

	fmt.Printf("Tracker URL: %s\n", link.Trackers[0])
	fmt.Printf("Info Hash: %x\n", link.InfoHash)

	return nil
}
