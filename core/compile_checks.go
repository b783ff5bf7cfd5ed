package core

var (
	_ Registry          = (*ProviderRegistry)(nil)
	_ PermissionChecker = (*UserPermissionChecker)(nil)
	_ URLResolver       = (*StaticURLResolver)(nil)
	_ MetricsRecorder   = NopMetricsRecorder{}
	_ ConfigProvider    = (*CfgxConfigProvider)(nil)
	_ OptionsResolver   = GoOptionsResolver{}
	_ RawConfigLoader   = staticRawConfigLoader{}
)
