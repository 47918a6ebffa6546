package bgw

// Realistic command outputs captured from a G450 branch gateway, used
// across the parser and field tests.

const sampleSystem = `
System Name             :
System Location         : Calgary
System Contact          :
Uptime (d,h:m:s)        : 22,06:00:13
Call Controller Time    : 13:33:56 16 DEC 2025
Serial No               : 13TG01116522
Model                   : G450
Chassis HW Vintage      : 1
Chassis HW Suffix       : A
Mainboard HW Vintage    : 2
Mainboard HW Suffix     : B
Mainboard HW CS         : 2.1.7
Mainboard FW Vintage    : 42.36.0
LAN MAC Address         : 00:1b:4f:3f:73:e0
WAN1 MAC Address        : 00:1b:4f:3f:73:e1
Memory #1               : 256MB
Memory #2               : Not present
Compact Flash Memory    : No CompactFlash card is installed
PSU #1                  : AC 400W
PSU #2                  : Not present
Media Socket #1         : MP160 VoIP DSP Module
Media Socket #2         : Not present
Media Socket #3         : Not present
Media Socket #4         : Not present
FAN Tray                : Present`

const sampleG430System = `
System Name             :
Uptime (d,h:m:s)        : 3,12:04:55
Serial No               : 11IS12345678
Model                   : g430
RAM Memory              : 512MB
Main PSU                : 250W
Media Socket #1         : MP20 VoIP DSP Module`

const sampleCapture = `

Capture service is enabled and active
Capture start time 09/12/2025-09:25:13
Capture stop time not-stopped
Current buffer size is 1024 KB
Buffer mode is non-cyclic
Maximum number of bytes captured from each frame: 4096
Capture list 501 on all interfaces
Number of captured frames in file: 604 (out of 145200 total captured frames)
Memory buffer occupancy: 4.62% (including overheads)`

const sampleCaptureStopped = `

Capture service is enabled and inactive
Actual capture stopped
Current buffer size is 1024 KB
Memory buffer occupancy: 71.03% (including overheads)`

const sampleCaptureDisabled = `

Capture service is disabled and inactive
Current buffer size is 1024 KB`

const sampleFaults = `

CURRENTLY ACTIVE FAULTS
--------------------------------------------------------------------------

-- Media Module Faults --
	+ Insertion failure, mmid = v5, 11/24-07:37:04.00

Current Alarm Indications, ALM LED is off
--------------------------------------------------------------------------
None`

const sampleMGList = `
SLOT   TYPE         CODE        SUFFIX  HW VINTAGE  FW VINTAGE
----   --------     ----------  ------  ----------  -----------
v1     -- Not Installed --
v2     -- Not Installed --
v3     E1T1         MM710       B       16          52
v4     -- Not Installed --
v5     -- Initializing --
v6     Analog       MM714       B       23          94
v7     -- Not Installed --
v8     -- Not Installed --
v10    Mainboard    G450        B       2           42.36.0(A)`

const samplePort = `
Port   Name             Status    Vlan Level  Neg     Dup. Spd. Type
------ ---------------- --------- ---- ------ ------- ---- ---- ----------------
10/5   NO NAME          connected 1     0     enable  full 1G   Avaya Inc., G450 Media Gateway 10/100/1000BaseTx Port 10/5

10/6   NO NAME          no link   1     0     enable  full 1G   Avaya Inc., G450 Media Gateway 10/100/1000BaseTx Port 10/6`

const sampleLLDP = `

Lldp Configuration
-------------------
Application status: disable
Tx interval: 30 seconds
Tx hold multiplier: 4 seconds`

const sampleTemp = `
Ambient
-------
Temperature : 36C (97F)
High Warning: 42C (108F)
Low Warning : -5C (23F)`

const sampleUtilization = `

Mod   CPU      CPU     RAM      RAM
      5sec     60sec   used(%)  Total(Kb)
---   ------   -----  -------  ----------
10    Appl. Disabled    48%     190838 Kb`

const sampleUtilizationNumeric = `

Mod   CPU      CPU     RAM      RAM
      5sec     60sec   used(%)  Total(Kb)
---   ------   -----  -------  ----------
10    12%      9%      48%     190838 Kb`

const sampleSLAMonitor = `

SLA Monitor:                  Enabled
Registered Server IP Address: 0.0.0.0
Registered Server IP Port:    0
Configured Server IP Address: 10.10.48.198
Configured Server IP Port:    50011
Version:                      2.7.0`

const sampleAnnouncements = `
 ID      File               Description    Size (Bytes)      Date
---- ------------------ ------------------ ------------ -------------------
101   moh.wav            announcement file      239798    2022-08-23,8:45:26
102   emergency.wav      announcement file       26618    2023-03-24,11:36:10
103   public_announceme  announcement file      201914    2024-10-24,7:37:52
104   mohtest.wav        announcement file     9648106    2025-07-15,14:50:16

Nv-Ram:
Total bytes used             : 10119680
Total bytes free             : 12672000`

const sampleRTPSummary = `
Total QoS traps: 2
QoS traps Drop : 0
Qos Fault
External   10.10.48.58    2/4        5/9        0        11:02:54,11:03:10`

const sampleRunningConfig = `

! version 42.36.0
Config info release 42.36.0 time "13:33:51 16 DEC 2025 " serial_number 10IS41452851
hostname "AvayaG450A"
set system location "Calgary"
no ip telnet
set port redundancy 10/5 10/6 on red1
no snmp-server community
encrypted-snmp-server user JSXE8Ccs0N0TnuoQek8jwLmaP391mjHjbt9glvbZ2M0= v3ReadISO v3 auth sha
snmp-server group v3ReadISO v3 priv read iso
snmp-server host 10.10.48.92 traps v3 priv bbysnmpv3trap
ip default-gateway 10.10.48.254    1 low
rtp-stat-service
rtp-stat fault
set sla-monitor enable
set sla-server-ip-address 10.10.48.198
set mgc list 10.10.48.240`

const sampleVoIPDSP = `
DSP #1 PARAMETERS
--------------------------------------------------------------
Board type     : MP160
Hw Vintage     : 0 B
Fw Vintage     : 182

DSP#1 CURRENT STATE
--------------------------------------------------------------
In Use         : 12 of 160 channels, 360 of 4800 points (7.5% used)
State          : Idle
Admin State    : Release

DSP #2 Not Present`

const sampleUploadExecuting = `
Upload status
-------------
Running state      : Executing
Total bytes        : 145200
Failure display    : (null)`

const sampleUploadFailed = `
Upload status
-------------
Running state      : Idle
Total bytes        : 0
Failure display    : TFTP-write-error`

const sampleUploadIdle = `
Upload status
-------------
Running state      : Idle
Total bytes        : 145200
Failure display    : (null)`
