package dnsclient

import (
	"bufio"
	"os"
	"strings"

	"github.com/samber/lo"
)

var DefaultPublicResolvers = []string{
	"1.1.1.1",
	"8.8.8.8",
	"9.9.9.9",
	"208.67.222.222",
	"114.114.114.114",
}

const systemResolvConf = "/etc/resolv.conf"

func LoadSystemResolvers() ([]string, error) {
	return loadResolvers(systemResolvConf)
}

// DefaultResolverChain returns the system resolvers followed by the public
// ones. A missing resolv.conf (Windows, containers) is not an error.
func DefaultResolverChain() []string {
	systemResolvers, err := LoadSystemResolvers()
	if err != nil {
		systemResolvers = nil
	}
	return uniqueResolvers(append(systemResolvers, DefaultPublicResolvers...))
}

func loadResolvers(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	resolvers := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.ToLower(fields[0]) == "nameserver" {
			resolvers = append(resolvers, fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return resolvers, nil
}

func uniqueResolvers(resolvers []string) []string {
	resolvers = lo.Map(resolvers, func(r string, _ int) string { return strings.TrimSpace(r) })
	return lo.UniqBy(lo.Compact(resolvers), strings.ToLower)
}
