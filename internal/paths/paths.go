// Package paths holds the kernel node and data file locations used by the
// governor. Everything the process touches outside its own binary is listed
// here; the file package's root redirection maps these onto fixture trees
// in tests.
package paths

// Load sampling cascade, most precise source first. Each node is probed at
// startup and unavailable ones fall through to the next.
const (
	MaliDVFSUtil    = "/sys/kernel/debug/mali0/dvfs_utilization"
	MaliDVFSUtilOld = "/proc/mali/dvfs_utilization"
	GPUFreqVarDump  = "/proc/gpufreq/gpufreq_var_dump"
	MTKMaliUtil     = "/proc/mtk_mali/utilization"
	MaliUtil        = "/proc/mali/utilization"
	GEDDebugUtil    = "/sys/kernel/debug/ged/hal/gpu_utilization"
	GEDDUtil        = "/sys/kernel/d/ged/hal/gpu_utilization"
	GEDHALUtil      = "/sys/kernel/ged/hal/gpu_utilization"
	GEDModuleIdle   = "/sys/module/ged/parameters/gpu_idle"
	GEDModuleLoad   = "/sys/module/ged/parameters/gpu_loading"
)

// GEDCurrentFreq reports the live GPU frequency. The spelling matches the
// kernel node, typo included.
const GEDCurrentFreq = "/sys/kernel/ged/hal/current_freqency"

// gpufreq (v1) driver control files.
const (
	V1Volt  = "/proc/gpufreq/gpufreq_fixed_freq_volt"
	V1OPP   = "/proc/gpufreq/gpufreq_opp_freq"
	V1Table = "/proc/gpufreq/gpufreq_opp_dump"
)

// gpufreqv2 (v2) driver control files.
const (
	V2Volt  = "/proc/gpufreqv2/fix_custom_freq_volt"
	V2OPP   = "/proc/gpufreqv2/fix_target_opp_index"
	V2Table = "/proc/gpufreqv2/stack_working_opp_table"
)

// PowerPolicy selects the Mali driver's autonomous power management policy.
const PowerPolicy = "/sys/class/misc/mali0/device/power_policy"

// DVFSRC force-OPP nodes for DDR frequency, platform variants in probe
// order. Writes stop at the first path that accepts the value.
var (
	DDRForceV1 = []string{
		"/sys/kernel/helio-dvfsrc/dvfsrc_force_vcore_dvfs_opp",
	}
	DDRForceV2 = []string{
		"/sys/kernel/helio-dvfsrc/dvfsrc_force_opp",
		"/sys/devices/platform/soc/1c00f000.dvfsrc/helio-dvfsrc-v2/dvfsrc_force_opp",
	}
)

// Governor data files under the module's persistent directory.
const (
	DataDir     = "/data/adb/gpu_governor"
	PolicyFile  = DataDir + "/config.toml"
	GamesFile   = DataDir + "/games.conf"
	GameMode    = DataDir + "/game_mode"
	CurrentMode = DataDir + "/current_mode"
	LogLevel    = DataDir + "/log_level"
	LogFile     = DataDir + "/log/gpu_gov.log"
)

// TableFile is the user-supplied frequency table.
const TableFile = "/data/gpu_freq_table.conf"

// FgPID reports the pid of the foreground render process.
const FgPID = "/sys/kernel/gbe/gbe2_fg_pid"
