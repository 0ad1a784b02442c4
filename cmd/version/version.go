// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Default build-time variable.
// These values are overridden via ldflags
var (
	Version   = "unknown-version"
	GitCommit = "unknown-commit"
	BuildTime = "unknown-buildtime"
)

// miningModules are reported with their versions since they decide mining results.
var miningModules = []string{
	"github.com/bits-and-blooms/bitset",
	"github.com/araddon/dateparse",
}

// resolve fills values left unset by ldflags from the module build info.
func resolve(info *debug.BuildInfo) (version, commit string, deps []string) {
	version, commit = Version, GitCommit
	if info == nil {
		return
	}
	if version == "unknown-version" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && commit == "unknown-commit" {
			commit = setting.Value
		}
	}
	for _, dep := range info.Deps {
		for _, path := range miningModules {
			if dep.Path == path {
				deps = append(deps, dep.Path+"@"+dep.Version)
			}
		}
	}
	return
}

func BuildInfo() string {
	info, _ := debug.ReadBuildInfo()
	version, commit, deps := resolve(info)
	var buildInfo string
	buildInfo += fmt.Sprintln("Version:\t", version)
	buildInfo += fmt.Sprintln("Go version:\t", runtime.Version())
	buildInfo += fmt.Sprintln("Git commit:\t", commit)
	buildInfo += fmt.Sprintln("Built:\t\t", BuildTime)
	buildInfo += fmt.Sprintf("OS/Arch:\t %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if len(deps) > 0 {
		buildInfo += fmt.Sprintln("Mining deps:\t", strings.Join(deps, " "))
	}
	return buildInfo
}
