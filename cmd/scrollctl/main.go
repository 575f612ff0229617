// scrollctl is an operator CLI for a running scroll-orchestrator instance.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "scrollctl",
	Short: "Operate a scroll-orchestrator instance",
	Long: `scrollctl talks to a running scroll-orchestrator over its HTTP API.

Example usage:
  scrollctl create "Fun facts about Rome"   # create a topic
  scrollctl page fun-facts-about-rome       # read the first page
  scrollctl page fun-facts-about-rome --offset 20 --load-more
  scrollctl trending                        # list recent topics
  scrollctl suggest "spa"                   # complete a partial topic`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		payload := map[string]string{"title": args[0]}
		if prompt != "" {
			payload["promptTemplate"] = prompt
		}
		return postJSON("/topics", payload)
	},
}

var pageCmd = &cobra.Command{
	Use:   "page <slug>",
	Short: "Read one page of a topic's feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, _ := cmd.Flags().GetInt("offset")
		loadMore, _ := cmd.Flags().GetBool("load-more")

		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		if loadMore {
			q.Set("loadMore", "true")
		}
		return getJSON("/topics/" + url.PathEscape(args[0]) + "/items?" + q.Encode())
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <slug>",
	Short: "Run one generation round and stream its events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := httpClient().Get(serverURL + "/topics/" + url.PathEscape(args[0]) + "/stream")
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			fmt.Println(string(body))
			return fmt.Errorf("server returned %s", resp.Status)
		}
		_, err = io.Copy(os.Stdout, resp.Body)
		return err
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List recently created topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/topics/trending")
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest topics for a partial query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postJSON("/suggestions", map[string]string{"query": args[0]})
	},
}

func init() {
	defaultServer := os.Getenv("SCROLL_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:9020"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "orchestrator base URL")

	createCmd.Flags().String("prompt", "", "generation prompt (defaults to the title)")
	pageCmd.Flags().Int("offset", 0, "item offset")
	pageCmd.Flags().Bool("load-more", false, "request the forward buffer to be kept warm")

	rootCmd.AddCommand(createCmd, pageCmd, generateCmd, trendingCmd, suggestCmd)
}

func httpClient() *http.Client {
	// Page reads may trigger a generation round, which can take a while.
	return &http.Client{Timeout: 120 * time.Second}
}

func getJSON(path string) error {
	resp, err := httpClient().Get(serverURL + path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func postJSON(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := httpClient().Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	fmt.Println(string(body))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
