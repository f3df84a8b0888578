package registry

import (
	"strconv"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// Paths of the deployment target that other packages refer to.
const (
	GeneralFunctionsPath  = "includes/GeneralFunctions.php"
	CacheClassPath        = "includes/classes/Cache.class.php"
	ComposeDescriptorPath = "docker-compose.yml"
	InstallMarkerPath     = "includes/ENABLE_INSTALL_TOOL"
	ConfigPath            = "includes/config.php"
	CacheDir              = "cache"
	IncludesDir           = "includes"
	DefaultPortMapping    = "3838:80"
	DefaultHostPort       = 3838
	containerPortSuffix   = ":80"
	cacheBuilderDir       = "includes/classes/cache/builder/"
	cacheResourceDir      = "includes/classes/cache/resource/"
)

// canonicalPaths lists restorable files in restore order. The cache
// builders are gitignored upstream and go missing on fresh checkouts.
var canonicalPaths = []string{
	cacheBuilderDir + "BuildCache.interface.php",
	cacheBuilderDir + "BannedBuildCache.class.php",
	cacheBuilderDir + "LanguageBuildCache.class.php",
	cacheBuilderDir + "TeamspeakBuildCache.class.php",
	cacheResourceDir + "CacheFile.class.php",
	cacheBuilderDir + "VarsBuildCache.class.php",
}

func defaultPatches() []core.PatchSpec {
	return []core.PatchSpec{
		{
			ID:          "exception-handler-error-log",
			Path:        GeneralFunctionsPath,
			Description: "log uncaught exceptions before rendering",
			Target:      "function exceptionHandler($exception)\n{",
			Replacement: "function exceptionHandler($exception)\n{\n\t/** @var $exception ErrorException|Exception */\n\terror_log(\"Exception: \" . $exception->getMessage() . \" in \" . $exception->getFile() . \":\" . $exception->getLine());",
		},
		{
			ID:          "exception-handler-config-guard",
			Path:        GeneralFunctionsPath,
			Description: "skip Config lookup in the exception handler when the class is not loaded",
			Target:      "if (MODE !== 'INSTALL') {\n\t\ttry {\n\t\t\t$config\t\t= Config::get();",
			Replacement: "if (MODE !== 'INSTALL' && class_exists('Config')) {\n\t\ttry {\n\t\t\t$config\t\t= Config::get();",
		},
		{
			ID:          "cache-interface-require-path",
			Path:        CacheClassPath,
			Description: "resolve the BuildCache interface relative to Cache.class.php",
			Target:      "require 'includes/classes/cache/builder/BuildCache.interface.php';",
			Replacement: "require dirname(__FILE__) . '/cache/builder/BuildCache.interface.php';",
		},
	}
}

// Default builds the registry for the deployment target.
func Default() (*Registry, error) {
	files, err := loadCanonical(canonicalPaths...)
	if err != nil {
		return nil, err
	}
	return New(files, defaultPatches())
}

// PortMapping returns the descriptor token publishing hostPort on the
// container's HTTP port.
func PortMapping(hostPort int) string {
	return strconv.Itoa(hostPort) + containerPortSuffix
}
