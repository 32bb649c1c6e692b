package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/transitgeo/gtfspublish"
	"github.com/transitgeo/gtfspublish/arcgis"
	"github.com/transitgeo/gtfspublish/config"
	"github.com/transitgeo/gtfspublish/constants"
)

func main() {
	app := &cli.App{
		Name:  "gtfs-publish",
		Usage: "publish a GTFS static bundle as hosted feature layers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the publisher configuration",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "feature service name (overrides the configured name)",
			},
			&cli.BoolFlag{
				Name:  "kml",
				Usage: "also generate and upload a KML rendition with the configured external tool",
			},
		},
		ArgsUsage: "bundle.zip",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("a path to the GTFS bundle was not provided")
	}
	bundlePath := c.Args().First()
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	serviceName := cfg.Service.Name
	if c.String("name") != "" {
		serviceName = c.String("name")
	}

	dir, files, err := extractBundle(bundlePath)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", bundlePath, err)
	}
	// The extracted copy is owned by this run and released on every exit
	// path, including failed imports.
	defer os.RemoveAll(dir)

	if err := gtfspublish.ValidateFiles(files); err != nil {
		return err
	}
	feed, err := gtfspublish.ParseFiles(files)
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn := arcgis.NewClient(cfg.Portal.URL, cfg.Portal.Username, cfg.Portal.Token)

	group := cfg.Service.Group
	if group == "" {
		group, err = conn.CreateGroup(ctx, serviceName)
		if err != nil {
			return err
		}
	}

	if c.Bool("kml") {
		if err := uploadKML(ctx, conn, cfg.Tools.KMLGenerator, bundlePath, serviceName, group); err != nil {
			// The KML rendition is an optional extra; its failure does not
			// block the feature layer import.
			color.New(color.FgYellow).Printf("KML generation skipped: %s\n", err)
		}
	}

	result, err := gtfspublish.Publish(ctx, conn, group, feed, serviceName)
	printReport(result)
	return err
}

// extractBundle unzips every regular member of the archive flat into a new
// temp directory. The caller owns the directory.
func extractBundle(zipPath string) (string, []gtfspublish.File, error) {
	dir, err := os.MkdirTemp("", "gtfs-publish-*")
	if err != nil {
		return "", nil, err
	}
	files, err := extractInto(dir, zipPath)
	if err != nil {
		os.RemoveAll(dir)
		return "", nil, err
	}
	return dir, files, nil
}

func extractInto(dir, zipPath string) ([]gtfspublish.File, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	var files []gtfspublish.File
	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(member.Name)
		dstPath := filepath.Join(dir, name)
		if err := extractMember(member, dstPath); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", member.Name, err)
		}
		files = append(files, gtfspublish.File{
			Name: constants.StaticFile(name),
			Path: dstPath,
		})
	}
	return files, nil
}

func extractMember(member *zip.File, dstPath string) error {
	src, err := member.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// uploadKML drives the external KML generation tool and publishes its output
// as a content item shared with the group. The tool is a boolean
// success/failure collaborator, not part of the pipeline.
func uploadKML(ctx context.Context, conn *arcgis.Client, tool, bundlePath, serviceName, group string) error {
	if tool == "" {
		return fmt.Errorf("no KML generator configured")
	}
	kmlPath := strings.TrimSuffix(bundlePath, filepath.Ext(bundlePath)) + ".kml"
	if err := exec.Command(tool, bundlePath, kmlPath).Run(); err != nil {
		return fmt.Errorf("%s failed: %w", tool, err)
	}
	data, err := os.ReadFile(kmlPath)
	if err != nil {
		return err
	}
	itemID, err := conn.AddItem(ctx, serviceName+" (KML)", "KML", data)
	if err != nil {
		return err
	}
	return conn.Share(ctx, itemID, group)
}

func printReport(result *gtfspublish.ImportResult) {
	if result == nil {
		return
	}
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for _, id := range result.Succeeded {
		green.Printf("ok   %s\n", id)
	}
	for _, failure := range result.Failures {
		red.Printf("fail %s: %s\n", failure.TaskID, failure.Reason)
	}
	if result.Failed() {
		red.Printf("import failed with %d error(s)\n", len(result.Failures))
	} else {
		green.Println("import succeeded")
	}
}
